// Package cachestore implements the process-wide Cache Store: one memoization
// slot per resource key holding the last full snapshot of a collection.
//
// Slots never expire. They are replaced wholesale by Set or a completed
// ReadThrough and removed by Clear. Each slot carries a version that every write
// bumps, so a load that started before an invalidation can never repopulate the
// slot with pre-invalidation data.
package cachestore

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	gocache "github.com/patrickmn/go-cache"
	"go.trai.ch/estatedesk/internal/core/domain"
	"go.trai.ch/estatedesk/internal/core/ports"
	"golang.org/x/sync/singleflight"
)

// Store implements ports.Cache on top of go-cache with expiry disabled.
type Store struct {
	items *gocache.Cache
	group singleflight.Group
	now   func() time.Time
	log   ports.Logger

	mu       sync.Mutex
	versions map[domain.ResourceKey]uint64

	hits   atomic.Uint64
	misses atomic.Uint64
	sets   atomic.Uint64
	clears atomic.Uint64
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the time source used for fetchedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger enables debug logging of hits, misses and invalidations.
func WithLogger(log ports.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		// A zero cleanup interval starts no janitor goroutine.
		items:    gocache.New(gocache.NoExpiration, 0),
		now:      time.Now,
		versions: make(map[domain.ResourceKey]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the cached collection for key. It never performs I/O.
func (s *Store) Get(key domain.ResourceKey) ([]domain.Entity, bool) {
	entry, ok := s.lookup(key)
	if !ok {
		s.misses.Add(1)
		s.debug("cache miss: " + string(key))
		return nil, false
	}
	s.hits.Add(1)
	s.debug("cache hit: " + string(key) + " (" + strconv.Itoa(len(entry.Data)) + " items, " +
		humanize.RelTime(entry.FetchedAt, s.now(), "ago", "from now") + ")")
	return slices.Clone(entry.Data), true
}

// Entry returns the full slot including its fetch timestamp. It does not count
// towards hit statistics.
func (s *Store) Entry(key domain.ResourceKey) (domain.CacheEntry, bool) {
	entry, ok := s.lookup(key)
	if !ok {
		return domain.CacheEntry{}, false
	}
	entry.Data = slices.Clone(entry.Data)
	return entry, true
}

// Age returns how long ago the slot was filled.
func (s *Store) Age(key domain.ResourceKey) (time.Duration, bool) {
	entry, ok := s.lookup(key)
	if !ok {
		return 0, false
	}
	return s.now().Sub(entry.FetchedAt), true
}

// Set replaces the slot for key.
func (s *Store) Set(key domain.ResourceKey, data []domain.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[key]++
	s.store(key, data)
}

// Clear removes the slot for key.
func (s *Store) Clear(key domain.ResourceKey) {
	s.mu.Lock()
	s.versions[key]++
	s.items.Delete(string(key))
	s.mu.Unlock()

	s.clears.Add(1)
	s.debug("cache cleared: " + string(key))
}

// ClearAll removes every slot. Loads in flight for any key, populated or not,
// are invalidated as well.
func (s *Store) ClearAll() {
	s.mu.Lock()
	for k := range s.versions {
		s.versions[k]++
	}
	n := s.items.ItemCount()
	s.items.Flush()
	s.mu.Unlock()

	s.clears.Add(uint64(n))
	s.debug("cache cleared: all (" + strconv.Itoa(n) + " slots)")
}

// ReadThrough returns the cached collection for key, or runs load and stores
// its result. Concurrent cold reads of the same key share one load. If the
// caller that started a shared load is cancelled, the remaining callers start
// a fresh one instead of inheriting the cancellation.
func (s *Store) ReadThrough(ctx context.Context, key domain.ResourceKey, load ports.Loader) ([]domain.Entity, error) {
	if data, ok := s.Get(key); ok {
		return data, nil
	}

	for {
		version := s.version(key)
		flight := string(key) + "#" + strconv.FormatUint(version, 10)

		ch := s.group.DoChan(flight, func() (any, error) {
			data, err := load(ctx)
			if err != nil {
				return nil, err
			}
			s.storeIfVersion(key, data, version)
			return data, nil
		})

		select {
		case <-ctx.Done():
			return nil, errors.Join(domain.ErrCancelled, ctx.Err())
		case res := <-ch:
			if res.Err != nil {
				if res.Shared && ctx.Err() == nil && errors.Is(res.Err, domain.ErrCancelled) {
					continue
				}
				return nil, res.Err
			}
			data, _ := res.Val.([]domain.Entity)
			return slices.Clone(data), nil
		}
	}
}

// Stats returns the usage counters.
func (s *Store) Stats() domain.CacheStats {
	return domain.CacheStats{
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Sets:    s.sets.Load(),
		Clears:  s.clears.Load(),
		Entries: s.items.ItemCount(),
	}
}

// Info describes every populated slot, ordered by key.
func (s *Store) Info() []domain.CacheInfo {
	items := s.items.Items()
	info := make([]domain.CacheInfo, 0, len(items))
	for _, item := range items {
		entry, ok := item.Object.(domain.CacheEntry)
		if !ok {
			continue
		}
		info = append(info, domain.CacheInfo{
			Key:       entry.Key,
			Items:     len(entry.Data),
			FetchedAt: entry.FetchedAt,
		})
	}
	slices.SortFunc(info, func(a, b domain.CacheInfo) int {
		switch {
		case a.Key < b.Key:
			return -1
		case a.Key > b.Key:
			return 1
		default:
			return 0
		}
	})
	return info
}

func (s *Store) lookup(key domain.ResourceKey) (domain.CacheEntry, bool) {
	v, ok := s.items.Get(string(key))
	if !ok {
		return domain.CacheEntry{}, false
	}
	entry, ok := v.(domain.CacheEntry)
	return entry, ok
}

// version also registers key so ClearAll reaches loads of never-filled slots.
func (s *Store) version(key domain.ResourceKey) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.versions[key]
	if !ok {
		s.versions[key] = 0
	}
	return v
}

func (s *Store) storeIfVersion(key domain.ResourceKey, data []domain.Entity, version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.versions[key] != version {
		s.debug("cache write skipped, slot changed during load: " + string(key))
		return
	}
	s.versions[key]++
	s.store(key, data)
}

// store must be called with s.mu held.
func (s *Store) store(key domain.ResourceKey, data []domain.Entity) {
	s.items.Set(string(key), domain.CacheEntry{
		Key:       key,
		Data:      slices.Clone(data),
		FetchedAt: s.now(),
	}, gocache.NoExpiration)
	s.sets.Add(1)
}

func (s *Store) debug(msg string) {
	if s.log != nil {
		s.log.Debug(msg)
	}
}

var _ ports.Cache = (*Store)(nil)

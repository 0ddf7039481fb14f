package domain

import "time"

// CacheEntry is the last known full snapshot of a collection.
// It is replaced wholesale or removed, never updated in place.
type CacheEntry struct {
	Key       ResourceKey
	Data      []Entity
	FetchedAt time.Time
}

// CacheStats are the usage counters of the Cache Store.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Sets    uint64
	Clears  uint64
	Entries int
}

// HitRate returns hits over lookups as a percentage.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// CacheInfo describes one populated slot.
type CacheInfo struct {
	Key       ResourceKey
	Items     int
	FetchedAt time.Time
}

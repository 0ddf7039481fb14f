// Package listctl implements the list controller shared by every view: it
// fetches the primary and auxiliary collections concurrently, resolves
// lookups, derives the visible page and funnels mutations through the
// invalidation protocol.
package listctl

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/estatedesk/internal/core/domain"
	"go.trai.ch/estatedesk/internal/core/ports"
	"go.trai.ch/estatedesk/internal/engine/derive"
	"go.trai.ch/estatedesk/internal/engine/lifecycle"
	"go.trai.ch/estatedesk/internal/engine/lookup"
	"go.trai.ch/estatedesk/internal/engine/mutation"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Controller is the list controller of one view.
//
// Lifecycle callbacks take mu while the manager holds its own lock, so the
// controller never calls into the manager while holding mu.
type Controller struct {
	cfg       Config
	deps      Deps
	manager   *lifecycle.Manager
	mutations *mutation.Protocol

	// issueMu orders Refresh calls so the latest handle is the latest generation.
	issueMu sync.Mutex
	last    *lifecycle.Request

	mu      sync.Mutex
	state   domain.ViewState
	rows    []domain.Entity
	tables  lookup.Tables
	hasData bool
	closed  bool
	changed chan struct{}
}

// New creates a controller in the idle state. Nothing is fetched until Refresh.
func New(cfg Config, deps Deps) *Controller {
	if cfg.PageSize < 1 {
		cfg.PageSize = DefaultPageSize
	}
	c := &Controller{
		cfg:       cfg,
		deps:      deps,
		manager:   lifecycle.NewManager(),
		mutations: mutation.New(deps.Cache, deps.Notifier, deps.Confirmer, deps.Logger, deps.Tracer),
		changed:   make(chan struct{}),
	}
	c.state.Query = domain.NewQuery(cfg.PageSize)
	c.state.View = derive.Derive(nil, nil, cfg.Rules, c.state.Query)
	return c
}

// Name returns the view name.
func (c *Controller) Name() string {
	return c.cfg.Name
}

// Config returns the view declaration.
func (c *Controller) Config() Config {
	return c.cfg
}

// ViewState returns a snapshot of the controller state. Rows in the snapshot
// are shared and must not be modified.
func (c *Controller) ViewState() domain.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the controller state together with the lookup tables of
// the last applied cycle, taken atomically.
func (c *Controller) Snapshot() (domain.ViewState, lookup.Tables) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.tables
}

// Changed returns a channel that is closed on the next state change.
func (c *Controller) Changed() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changed
}

// Refresh starts a fetch cycle for the current query and supersedes the
// previous one, whose network exchange is cancelled.
func (c *Controller) Refresh(ctx context.Context) *lifecycle.Request {
	return c.issue(ctx, false)
}

// refetch starts the cycle that follows a successful mutation. Its failure is
// reported as a warning since the mutation itself already went through.
func (c *Controller) refetch(ctx context.Context) *lifecycle.Request {
	return c.issue(ctx, true)
}

func (c *Controller) issue(ctx context.Context, background bool) *lifecycle.Request {
	c.issueMu.Lock()
	defer c.issueMu.Unlock()

	if c.last != nil {
		c.last.Cancel()
	}
	c.last = c.manager.Issue(ctx, c.task(background))
	return c.last
}

// Wait blocks until the latest fetch cycle settles.
func (c *Controller) Wait(ctx context.Context) (lifecycle.Outcome, error) {
	c.issueMu.Lock()
	req := c.last
	c.issueMu.Unlock()

	if req == nil {
		return lifecycle.OutcomePending, nil
	}
	return req.Wait(ctx)
}

// SetSearchTerm updates the free-text search. It never triggers a fetch.
func (c *Controller) SetSearchTerm(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setQueryLocked(c.state.Query.WithSearch(term))
}

// SetPage moves to page n, clamped to the available range.
func (c *Controller) SetPage(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setQueryLocked(c.state.Query.WithPage(n))
}

// SetFilter sets or, with an empty value, clears a declared filter. Changing a
// remote filter after the first Refresh starts a fetch cycle and returns its
// handle; otherwise the result is nil.
func (c *Controller) SetFilter(ctx context.Context, name, value string) (*lifecycle.Request, error) {
	f, ok := c.cfg.Rules.Filter(name)
	if !ok {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrUnknownFilter, "cannot set filter"), "filter", name), "view", c.cfg.Name)
	}
	if value != "" && len(f.Options) > 0 && !slices.Contains(f.Options, value) {
		return nil, zerr.With(zerr.Wrap(domain.ErrValidationRejected, fmt.Sprintf("%q is not a valid value for %s", value, name)), "options", f.Options)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, domain.ErrControllerClosed
	}
	before := c.state.Query.Filter(name)
	c.setQueryLocked(c.state.Query.WithFilter(name, value))
	c.mu.Unlock()

	c.issueMu.Lock()
	started := c.last != nil
	c.issueMu.Unlock()

	if !f.Remote || before == value || !started {
		return nil, nil
	}
	return c.Refresh(ctx), nil
}

// Close cancels every outstanding fetch. Late results are discarded.
func (c *Controller) Close() {
	c.manager.Close()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		c.broadcastLocked()
	}
}

// Remove deletes the record with the given id after confirmation.
func (c *Controller) Remove(ctx context.Context, id string) error {
	return c.Mutate(ctx, mutation.Operation{
		Kind:     mutation.Delete,
		Prompt:   fmt.Sprintf("¿Está seguro de que desea eliminar %s %s?", c.cfg.Messages.Singular, id),
		Success:  "Registro eliminado correctamente",
		Failure:  "Error al eliminar " + c.cfg.Messages.Singular,
		Conflict: c.cfg.Messages.Conflict,
		Do: func(ctx context.Context) error {
			return c.deps.Transport.Delete(ctx, c.cfg.Primary.ItemPath(id))
		},
	})
}

// Create posts a new record.
func (c *Controller) Create(ctx context.Context, body domain.Entity) (domain.Entity, error) {
	var created domain.Entity
	err := c.Mutate(ctx, mutation.Operation{
		Kind:    mutation.Create,
		Success: "Registro creado correctamente",
		Failure: "Error al crear " + c.cfg.Messages.Singular,
		Do: func(ctx context.Context) (err error) {
			created, err = c.deps.Transport.Create(ctx, c.cfg.Primary.Path, body)
			return err
		},
	})
	return created, err
}

// Update replaces the fields of the record with the given id.
func (c *Controller) Update(ctx context.Context, id string, body domain.Entity) (domain.Entity, error) {
	var updated domain.Entity
	err := c.Mutate(ctx, mutation.Operation{
		Kind:    mutation.Update,
		Success: "Registro actualizado correctamente",
		Failure: "Error al actualizar " + c.cfg.Messages.Singular,
		Do: func(ctx context.Context) (err error) {
			updated, err = c.deps.Transport.Update(ctx, c.cfg.Primary.ItemPath(id), body)
			return err
		},
	})
	return updated, err
}

// Upload sends a document form after validate accepts it.
func (c *Controller) Upload(ctx context.Context, form domain.UploadForm, validate func() error) (domain.Entity, error) {
	var uploaded domain.Entity
	err := c.Mutate(ctx, mutation.Operation{
		Kind:     mutation.Upload,
		Success:  "Documento subido correctamente",
		Failure:  "Error al subir el documento",
		Validate: validate,
		Do: func(ctx context.Context) (err error) {
			uploaded, err = c.deps.Transport.Upload(ctx, c.cfg.Primary.UploadPath(), form)
			return err
		},
	})
	return uploaded, err
}

// Mutate runs op against the primary resource. On success the primary cache
// slot is cleared and a fetch cycle is started; Wait observes it.
func (c *Controller) Mutate(ctx context.Context, op mutation.Operation) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return domain.ErrControllerClosed
	}

	op.Slot = c.cfg.Primary.CacheKey()
	op.Refetch = func() { c.refetch(ctx) }
	return c.mutations.Mutate(ctx, op)
}

func (c *Controller) task(background bool) lifecycle.Task {
	var gen uint64
	return lifecycle.Task{
		Begin: func(g uint64) {
			gen = g
			c.mu.Lock()
			defer c.mu.Unlock()
			c.state.Status = domain.StatusLoading
			c.state.Generation = g
			c.broadcastLocked()
		},
		Fetch: func(ctx context.Context) (lifecycle.Apply, error) {
			return c.fetch(ctx, gen)
		},
		Fail: func(g uint64, err error) {
			c.fail(g, err, background)
		},
		Settled: func(g uint64, o lifecycle.Outcome) {
			if o == lifecycle.OutcomeStale {
				c.deps.Logger.Debug(fmt.Sprintf("%s: discarded stale response of generation %d", c.cfg.Name, g))
			}
		},
	}
}

// fetch loads the primary and auxiliary collections concurrently. Any failure
// fails the whole cycle.
func (c *Controller) fetch(ctx context.Context, gen uint64) (lifecycle.Apply, error) {
	c.mu.Lock()
	params := c.cfg.Rules.RemoteParams(c.state.Query)
	c.mu.Unlock()

	ctx, span := c.deps.Tracer.Start(ctx, "listctl.fetch")
	defer span.End()
	span.SetAttribute("view", c.cfg.Name)
	span.SetAttribute("generation", gen)
	span.SetAttribute("remote", len(params) > 0)

	if len(params) > 0 {
		fp := fingerprint(params)
		span.SetAttribute("params_hash", fp)
		c.deps.Logger.Debug(fmt.Sprintf("%s: generation %d fetching with params %s (%s)", c.cfg.Name, gen, params.Encode(), fp))
	}

	var primary []domain.Entity
	collections := make([][]domain.Entity, len(c.cfg.Lookups))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		primary, err = c.fetchPrimary(gctx, params)
		return err
	})
	for i, src := range c.cfg.Lookups {
		g.Go(func() (err error) {
			collections[i], err = c.deps.Cache.ReadThrough(gctx, src.Resource.CacheKey(), c.loader(src.Resource, nil))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	tables := lookup.ResolveAll(c.cfg.Lookups, collections)
	for _, src := range c.cfg.Lookups {
		if n := tables.Table(src.Name).Collisions(); n > 0 {
			c.deps.Logger.Debug(fmt.Sprintf("%s: %d duplicate keys in %s, last wins", c.cfg.Name, n, src.Name))
		}
	}
	span.SetAttribute("rows", len(primary))

	return func() { c.apply(primary, tables) }, nil
}

// fetchPrimary reads the primary collection through the cache unless a remote
// filter is active.
func (c *Controller) fetchPrimary(ctx context.Context, params url.Values) ([]domain.Entity, error) {
	if len(params) > 0 {
		return c.loader(c.cfg.Primary, params)(ctx)
	}
	return c.deps.Cache.ReadThrough(ctx, c.cfg.Primary.CacheKey(), c.loader(c.cfg.Primary, nil))
}

func (c *Controller) loader(res domain.Resource, params url.Values) ports.Loader {
	return func(ctx context.Context) ([]domain.Entity, error) {
		rows, err := c.deps.Transport.List(ctx, res.Path, params)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to fetch "+res.Name), "path", res.Path)
		}
		return rows, nil
	}
}

func (c *Controller) apply(rows []domain.Entity, tables lookup.Tables) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rows = rows
	c.tables = tables
	c.hasData = true
	c.state.Status = domain.StatusLoaded
	c.state.Err = nil
	c.state.Retryable = false
	c.state.Stale = false
	c.state.Stats = derive.Aggregate(rows, tables, c.cfg.Rules.Stats)
	c.setQueryLocked(c.state.Query)
}

// fail records a failed cycle. With data on screen the last good view stays
// visible; a background cycle without data is still only a warning.
func (c *Controller) fail(gen uint64, err error, background bool) {
	err = errors.Join(domain.ErrLoadFailed, zerr.With(zerr.Wrap(err, "fetch cycle failed"), "view", c.cfg.Name))
	msg := "Error al cargar " + c.cfg.Messages.Plural

	c.mu.Lock()
	c.state.Err = err
	level := domain.NoticeError
	switch {
	case c.hasData:
		c.state.Status = domain.StatusLoaded
		c.state.Stale = true
		level = domain.NoticeWarning
		msg += "; se muestran los últimos datos disponibles"
	case background:
		c.state.Status = domain.StatusFailed
		c.state.Retryable = true
		level = domain.NoticeWarning
		msg = "No se pudieron recargar " + c.cfg.Messages.Plural
	default:
		c.state.Status = domain.StatusFailed
		c.state.Retryable = true
	}
	c.broadcastLocked()
	c.mu.Unlock()

	c.deps.Logger.Debug(fmt.Sprintf("%s: generation %d failed", c.cfg.Name, gen))
	c.deps.Notifier.Notify(domain.Notice{Level: level, Message: msg, Err: err})
}

// setQueryLocked stores q and re-derives the view. Once data is loaded the
// page is clamped into range.
func (c *Controller) setQueryLocked(q domain.Query) {
	view := derive.Derive(c.rows, c.tables, c.cfg.Rules, q)
	if c.hasData {
		q.Page = view.Page
	}
	c.state.Query = q
	c.state.View = view
	c.broadcastLocked()
}

func (c *Controller) broadcastLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

// fingerprint identifies a set of remote parameters in logs and spans.
func fingerprint(params url.Values) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(params.Encode()))
}

// Package lifecycle issues cancellable fetches tagged with a monotonically
// increasing generation and arbitrates their completions.
//
// A fetch's result is applied only if its generation is still the latest one
// issued and the manager has not been closed. Results of superseded fetches
// are discarded, and cancelled fetches are settled silently.
package lifecycle

import (
	"context"
	"errors"
	"sync"

	"go.trai.ch/estatedesk/internal/core/domain"
)

// Outcome is how an issued fetch settled.
type Outcome int

const (
	// OutcomePending means the fetch has not settled yet.
	OutcomePending Outcome = iota
	// OutcomeApplied means the result was applied for the current generation.
	OutcomeApplied
	// OutcomeFailed means the current generation failed and Task.Fail ran.
	OutcomeFailed
	// OutcomeStale means the fetch finished after a newer one was issued or
	// after Close, and its result was discarded.
	OutcomeStale
	// OutcomeCancelled means the fetch's context was cancelled.
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeApplied:
		return "applied"
	case OutcomeFailed:
		return "failed"
	case OutcomeStale:
		return "stale"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Apply commits a fetched result to its consumer's state.
type Apply func()

// Fetch performs the I/O of one cycle and returns how to commit it.
type Fetch func(ctx context.Context) (Apply, error)

// Task describes one fetch cycle.
type Task struct {
	// Begin runs when the generation is allocated, before Fetch starts.
	Begin func(gen uint64)
	// Fetch is required.
	Fetch Fetch
	// Fail runs when the current generation fails with a non-cancellation error.
	Fail func(gen uint64, err error)
	// Settled runs last, whatever the outcome. Optional.
	Settled func(gen uint64, outcome Outcome)
}

// Manager serializes generation bookkeeping for one consumer.
// Begin, Apply, Fail and Settled callbacks run while the manager lock is
// held; they must not call back into the manager.
type Manager struct {
	mu       sync.Mutex
	current  uint64
	closed   bool
	inflight map[uint64]*Request
}

// NewManager creates a Manager with generation 0 and nothing in flight.
func NewManager() *Manager {
	return &Manager{inflight: make(map[uint64]*Request)}
}

// Request is the handle of an issued fetch.
type Request struct {
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}

	outcome Outcome
	err     error
}

// Generation returns the generation the request was issued with.
func (r *Request) Generation() uint64 {
	return r.gen
}

// Cancel aborts the fetch's context. It is safe to call more than once.
func (r *Request) Cancel() {
	r.cancel()
}

// Done is closed once the request has settled.
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the request settles or ctx is done.
func (r *Request) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-r.done:
		return r.outcome, r.err
	case <-ctx.Done():
		return OutcomePending, ctx.Err()
	}
}

// Current returns the latest issued generation.
func (m *Manager) Current() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Closed reports whether Close was called.
func (m *Manager) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Issue allocates a new generation and starts task.Fetch in its own goroutine.
// Earlier requests are superseded but not cancelled; callers that want the
// network exchange aborted cancel the previous handle themselves.
// After Close, Issue returns an already cancelled request.
func (m *Manager) Issue(ctx context.Context, task Task) *Request {
	ctx, cancel := context.WithCancel(ctx)
	req := &Request{cancel: cancel, done: make(chan struct{})}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		cancel()
		req.outcome = OutcomeCancelled
		close(req.done)
		return req
	}
	m.current++
	req.gen = m.current
	m.inflight[req.gen] = req
	if task.Begin != nil {
		task.Begin(req.gen)
	}
	m.mu.Unlock()

	go m.run(ctx, req, task)
	return req
}

// Close tears the consumer down: every in-flight fetch is cancelled and any
// late result is discarded.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for _, req := range m.inflight {
		req.cancel()
	}
}

func (m *Manager) run(ctx context.Context, req *Request, task Task) {
	apply, err := task.Fetch(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	defer close(req.done)
	defer req.cancel()
	delete(m.inflight, req.gen)

	switch {
	case isCancellation(ctx, err):
		req.outcome = OutcomeCancelled
	case m.closed || req.gen != m.current:
		req.outcome = OutcomeStale
		req.err = err
	case err != nil:
		req.outcome = OutcomeFailed
		req.err = err
		if task.Fail != nil {
			task.Fail(req.gen, err)
		}
	default:
		req.outcome = OutcomeApplied
		if apply != nil {
			apply()
		}
	}
	if task.Settled != nil {
		task.Settled(req.gen, req.outcome)
	}
}

// isCancellation reports whether a fetch ended because its own context fired.
// A completed fetch whose context was cancelled afterwards still counts as
// cancelled, so a cancel that races a valid completion is never applied.
func isCancellation(ctx context.Context, err error) bool {
	if errors.Is(err, domain.ErrCancelled) {
		return true
	}
	return ctx.Err() != nil
}

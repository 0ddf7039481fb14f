// Package mutation runs create, update, delete and upload actions against a
// resource and keeps the shared cache coherent with their outcome.
//
// A successful mutation clears the resource's cache slot and triggers a
// refetch. A failed one leaves the cache untouched and is reported once.
package mutation

import (
	"context"
	"errors"
	"fmt"

	"go.trai.ch/estatedesk/internal/core/domain"
	"go.trai.ch/estatedesk/internal/core/ports"
	"go.trai.ch/zerr"
)

// Kind is the type of a mutation.
type Kind int

const (
	// Create posts a new record.
	Create Kind = iota
	// Update replaces a record's fields.
	Update
	// Delete removes a record; it requires confirmation.
	Delete
	// Upload sends a document.
	Upload
)

func (k Kind) String() string {
	switch k {
	case Create:
		return "create"
	case Update:
		return "update"
	case Delete:
		return "delete"
	case Upload:
		return "upload"
	default:
		return "unknown"
	}
}

// Operation is one mutation request.
type Operation struct {
	Kind Kind
	// Slot is the cache entry owned by the mutated resource.
	Slot domain.ResourceKey
	// Prompt is shown by the confirmation gate before a delete.
	Prompt string
	// Success is notified after the backend accepted the change.
	Success string
	// Failure is notified when the backend rejected it.
	Failure string
	// Conflict replaces Failure when the rejection is a referential conflict.
	Conflict string
	// Validate runs before any network call. Optional.
	Validate func() error
	// Do performs the network call.
	Do func(ctx context.Context) error
	// Refetch re-runs the owner's fetch cycle after the cache was cleared. Optional.
	Refetch func()
}

// Protocol applies the mutation-invalidation rules.
type Protocol struct {
	cache     ports.Cache
	notifier  ports.Notifier
	confirmer ports.Confirmer
	log       ports.Logger
	tracer    ports.Tracer
}

// New creates a Protocol.
func New(cache ports.Cache, notifier ports.Notifier, confirmer ports.Confirmer, log ports.Logger, tracer ports.Tracer) *Protocol {
	return &Protocol{
		cache:     cache,
		notifier:  notifier,
		confirmer: confirmer,
		log:       log,
		tracer:    tracer,
	}
}

// Mutate runs op. It never retries.
//
// Deletes are gated by the Confirmer; a declined confirmation returns
// domain.ErrDeleteNotConfirmed without touching the backend. Cancellation is
// returned but not notified.
func (p *Protocol) Mutate(ctx context.Context, op Operation) error {
	ctx, span := p.tracer.Start(ctx, "mutation."+op.Kind.String())
	defer span.End()
	span.SetAttribute("slot", string(op.Slot))

	if op.Validate != nil {
		if err := op.Validate(); err != nil {
			msg := message(err)
			if !errors.Is(err, domain.ErrValidationRejected) {
				err = errors.Join(domain.ErrValidationRejected, err)
			}
			p.notifier.Notify(domain.Notice{Level: domain.NoticeWarning, Message: msg, Err: err})
			span.RecordError(err)
			return err
		}
	}

	if op.Kind == Delete {
		ok, err := p.confirmer.Confirm(ctx, op.Prompt)
		if err != nil {
			err = zerr.Wrap(err, "confirmation failed")
			span.RecordError(err)
			return err
		}
		if !ok {
			p.log.Debug(fmt.Sprintf("delete on %s declined", op.Slot))
			span.SetAttribute("confirmed", false)
			return domain.ErrDeleteNotConfirmed
		}
	}

	if err := op.Do(ctx); err != nil {
		if errors.Is(err, domain.ErrCancelled) {
			p.log.Debug(fmt.Sprintf("%s on %s cancelled", op.Kind, op.Slot))
			return err
		}
		msg := op.Failure
		if op.Conflict != "" && errors.Is(err, domain.ErrConflict) {
			msg = op.Conflict
		}
		if msg == "" {
			msg = message(err)
		}
		wrapped := errors.Join(domain.ErrMutationFailed, err)
		p.notifier.Notify(domain.Notice{Level: domain.NoticeError, Message: msg, Err: wrapped})
		span.RecordError(wrapped)
		return wrapped
	}

	p.cache.Clear(op.Slot)
	p.log.Debug(fmt.Sprintf("%s on %s succeeded, cache slot cleared", op.Kind, op.Slot))
	if op.Success != "" {
		p.notifier.Notify(domain.Notice{Level: domain.NoticeSuccess, Message: op.Success})
	}
	if op.Refetch != nil {
		op.Refetch()
	}
	return nil
}

// message renders the outermost message of an error chain.
func message(err error) string {
	var m interface{ Message() string }
	if errors.As(err, &m) && m.Message() != "" {
		return m.Message()
	}
	return err.Error()
}

package ports

import (
	"context"
	"net/url"

	"go.trai.ch/estatedesk/internal/core/domain"
)

// Transport is the backend collaborator. Every method fails with an error
// wrapping domain.ErrCancelled when ctx is cancelled before the exchange completes.
//
//go:generate mockgen -source=transport.go -destination=mocks/mock_transport.go -package=mocks
type Transport interface {
	// List fetches a collection. Bare arrays and items envelopes are both
	// normalized to a plain sequence.
	List(ctx context.Context, path string, params url.Values) ([]domain.Entity, error)
	// Get fetches a single record.
	Get(ctx context.Context, path string) (domain.Entity, error)
	// Create posts a new record to a collection.
	Create(ctx context.Context, path string, body domain.Entity) (domain.Entity, error)
	// Update replaces the fields of a record.
	Update(ctx context.Context, path string, body domain.Entity) (domain.Entity, error)
	// Delete removes a record.
	Delete(ctx context.Context, path string) error
	// Upload sends a multipart form.
	Upload(ctx context.Context, path string, form domain.UploadForm) (domain.Entity, error)
}

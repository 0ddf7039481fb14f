package ports

import (
	"context"

	"go.trai.ch/estatedesk/internal/core/domain"
)

// Loader fetches the full collection behind a cache slot.
type Loader func(ctx context.Context) ([]domain.Entity, error)

// Cache is the Cache Store shared by every controller of the process.
//
//go:generate mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type Cache interface {
	// Get returns the cached collection without performing I/O.
	Get(key domain.ResourceKey) ([]domain.Entity, bool)
	// Set replaces the slot wholesale.
	Set(key domain.ResourceKey, data []domain.Entity)
	// Clear removes the slot.
	Clear(key domain.ResourceKey)
	// ClearAll removes every slot.
	ClearAll()
	// ReadThrough returns the cached collection or loads and stores it.
	ReadThrough(ctx context.Context, key domain.ResourceKey, load Loader) ([]domain.Entity, error)
}

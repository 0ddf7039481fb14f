package cachestore

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/estatedesk/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/estatedesk/internal/core/ports"
)

// NodeID is the unique identifier for the Cache Store Graft node.
const NodeID graft.ID = "engine.cachestore"

func init() {
	graft.Register(graft.Node[*Store]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (*Store, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(WithLogger(log)), nil
		},
	})
}

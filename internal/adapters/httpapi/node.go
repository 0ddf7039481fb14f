package httpapi

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/estatedesk/internal/adapters/config" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/estatedesk/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/estatedesk/internal/core/domain"
	"go.trai.ch/estatedesk/internal/core/ports"
)

// NodeID is the unique identifier for the HTTP transport Graft node.
const NodeID graft.ID = "adapter.httpapi"

func init() {
	graft.Register(graft.Node[ports.Transport]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.Transport, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(cfg.API.BaseURL,
				WithTimeout(cfg.API.Timeout),
				WithToken(cfg.API.Token),
				WithLogger(log),
			), nil
		},
	})
}

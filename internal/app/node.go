package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/estatedesk/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/estatedesk/internal/adapters/httpapi"   //nolint:depguard // Wired in app layer
	"go.trai.ch/estatedesk/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/estatedesk/internal/adapters/notify"    //nolint:depguard // Wired in app layer
	"go.trai.ch/estatedesk/internal/adapters/prompt"    //nolint:depguard // Wired in app layer
	"go.trai.ch/estatedesk/internal/adapters/render"    //nolint:depguard // Wired in app layer
	"go.trai.ch/estatedesk/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/estatedesk/internal/catalog"
	"go.trai.ch/estatedesk/internal/core/domain"
	"go.trai.ch/estatedesk/internal/core/ports"
	"go.trai.ch/estatedesk/internal/engine/cachestore"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			catalog.NodeID,
			httpapi.NodeID,
			cachestore.NodeID,
			notify.NodeID,
			prompt.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
			render.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			config.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: app, Logger: log, Config: cfg}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	cfg, err := graft.Dep[*domain.Config](ctx)
	if err != nil {
		return nil, err
	}
	views, err := graft.Dep[*catalog.Catalog](ctx)
	if err != nil {
		return nil, err
	}
	transport, err := graft.Dep[ports.Transport](ctx)
	if err != nil {
		return nil, err
	}
	cache, err := graft.Dep[*cachestore.Store](ctx)
	if err != nil {
		return nil, err
	}
	notifier, err := graft.Dep[*notify.Notifier](ctx)
	if err != nil {
		return nil, err
	}
	confirmer, err := graft.Dep[*prompt.Terminal](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}
	renderer, err := graft.Dep[*render.Renderer](ctx)
	if err != nil {
		return nil, err
	}

	return New(cfg, views, transport, cache, notifier, confirmer, log, tracer, renderer), nil
}

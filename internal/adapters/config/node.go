package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/estatedesk/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/estatedesk/internal/core/domain"
	"go.trai.ch/estatedesk/internal/core/ports"
)

const (
	// PathNodeID provides the config path; the CLI patches it once flags are parsed.
	PathNodeID graft.ID = "adapter.config_path"
	// LoaderNodeID is the unique identifier for the config loader Graft node.
	LoaderNodeID graft.ID = "adapter.config_loader"
	// NodeID provides the loaded configuration.
	NodeID graft.ID = "adapter.config"
)

func init() {
	graft.Register(graft.Node[Path]{
		ID:        PathNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (Path, error) {
			return "", nil
		},
	})

	graft.Register(graft.Node[ports.ConfigLoader]{
		ID:        LoaderNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.ConfigLoader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(log), nil
		},
	})

	graft.Register(graft.Node[*domain.Config]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{PathNodeID, LoaderNodeID},
		Run: func(ctx context.Context) (*domain.Config, error) {
			path, err := graft.Dep[Path](ctx)
			if err != nil {
				return nil, err
			}
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			return loader.Load(string(path))
		},
	})
}

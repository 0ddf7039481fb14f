// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/estatedesk/internal/adapters/config"
	_ "go.trai.ch/estatedesk/internal/adapters/httpapi"
	_ "go.trai.ch/estatedesk/internal/adapters/logger"
	_ "go.trai.ch/estatedesk/internal/adapters/notify"
	_ "go.trai.ch/estatedesk/internal/adapters/prompt"
	_ "go.trai.ch/estatedesk/internal/adapters/render"
	_ "go.trai.ch/estatedesk/internal/adapters/telemetry"
	// Register app, catalog and engine nodes.
	_ "go.trai.ch/estatedesk/internal/app"
	_ "go.trai.ch/estatedesk/internal/catalog"
	_ "go.trai.ch/estatedesk/internal/engine/cachestore"
)

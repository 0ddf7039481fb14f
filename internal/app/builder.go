package app

import (
	"context"

	"go.trai.ch/estatedesk/internal/adapters/telemetry"
	"go.trai.ch/estatedesk/internal/core/domain"
	"go.trai.ch/estatedesk/internal/core/ports"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger
	Config *domain.Config
}

// Options are the process-wide switches set from global flags.
type Options struct {
	JSON    bool
	Verbose bool
	Trace   bool
}

type configurable interface {
	SetJSON(enable bool)
	SetVerbose(enable bool)
}

// Configure applies opts on top of the configuration file and returns the
// function that flushes tracing, if enabled.
func (c *Components) Configure(opts Options) func(context.Context) error {
	if l, ok := c.Logger.(configurable); ok {
		var logCfg domain.LogConfig
		if c.Config != nil {
			logCfg = c.Config.Log
		}
		l.SetJSON(opts.JSON || logCfg.JSON)
		l.SetVerbose(opts.Verbose || logCfg.Verbose)
	}

	if !opts.Trace {
		return func(context.Context) error { return nil }
	}
	return telemetry.Setup(c.Logger)
}

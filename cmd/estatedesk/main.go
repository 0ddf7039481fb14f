// Package main is the entry point for the estatedesk console.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/estatedesk/cmd/estatedesk/commands"
	"go.trai.ch/estatedesk/internal/adapters/config"
	"go.trai.ch/estatedesk/internal/app"
	_ "go.trai.ch/estatedesk/internal/wiring"
)

// ComponentProvider is a function that returns the application components
// for the given configuration file.
type ComponentProvider func(ctx context.Context, configPath string) (*app.Components, func(), error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, func(ctx context.Context, configPath string) (*app.Components, func(), error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx, graft.PatchValue[config.Path](config.Path(configPath)))
		return c, func() {}, err
	}))
}

func run(
	ctx context.Context,
	args []string,
	stderr io.Writer,
	provider ComponentProvider,
	opts ...func(*app.App),
) int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Components are resolved lazily, once global flags are parsed.
	var (
		components *app.Components
		initErr    error
		cleanup    = func() {}
		shutdown   = func(context.Context) error { return nil }
	)
	setup := func(ctx context.Context, configPath string, global app.Options) (commands.Application, error) {
		c, done, err := provider(ctx, configPath)
		if err != nil {
			initErr = err
			return nil, err
		}
		components, cleanup = c, done
		for _, opt := range opts {
			opt(components.App)
		}
		shutdown = components.Configure(global)
		return components.App, nil
	}

	// 2. Interface - CLI
	cli := commands.New(setup)
	cli.SetArgs(args)
	cli.SetOutput(os.Stdout, stderr)

	// 3. Execution
	err := cli.Execute(ctx)
	defer cleanup()
	if flushErr := shutdown(context.WithoutCancel(ctx)); flushErr != nil && components != nil {
		components.Logger.Error(flushErr)
	}

	switch {
	case err == nil:
		return 0
	case initErr != nil || components == nil:
		// Logger is not available yet if initialization failed
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return 1
	case app.Reported(err):
		return 1
	default:
		components.Logger.Error(err)
		return 1
	}
}

// Package commands implements the CLI commands for the estatedesk console.
package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/estatedesk/internal/app"
	"go.trai.ch/estatedesk/internal/build"
	"go.trai.ch/zerr"
)

// CLI represents the command line interface for estatedesk.
type CLI struct {
	setup   Setup
	app     Application
	rootCmd *cobra.Command

	configPath string
	opts       app.Options
}

// Application represents the application logic interface.
type Application interface {
	List(ctx context.Context, view string, opts app.ListOptions) error
	Show(ctx context.Context, view, id string) error
	Delete(ctx context.Context, view, id string, assumeYes bool) error
	Create(ctx context.Context, view string, fields map[string]string) error
	Update(ctx context.Context, view, id string, fields map[string]string) error
	Upload(ctx context.Context, opts app.UploadOptions) error
	Views() error
	CacheStats(ctx context.Context, opts app.CacheStatsOptions) error
	CacheClear(resource string) error
}

// Setup builds the application once global flags are parsed.
type Setup func(ctx context.Context, configPath string, opts app.Options) (Application, error)

// New creates a new CLI instance that resolves its application through setup.
func New(setup Setup) *CLI {
	rootCmd := &cobra.Command{
		Use:           "estatedesk",
		Short:         "A console for the real-estate back office",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))

	c := &CLI{
		setup:   setup,
		rootCmd: rootCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "Path to the configuration file (default estatedesk.yaml)")
	flags.BoolVar(&c.opts.JSON, "json", false, "Write logs as JSON")
	flags.BoolVarP(&c.opts.Verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&c.opts.Trace, "trace", false, "Log span timings of fetches and mutations")

	// -v belongs to --verbose, so the version flag is declared without a shorthand.
	rootCmd.Flags().Bool("version", false, "Print the application version")
	rootCmd.InitDefaultVersionFlag()

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newShowCmd())
	rootCmd.AddCommand(c.newDeleteCmd())
	rootCmd.AddCommand(c.newCreateCmd())
	rootCmd.AddCommand(c.newUpdateCmd())
	rootCmd.AddCommand(c.newUploadCmd())
	rootCmd.AddCommand(c.newViewsCmd())
	rootCmd.AddCommand(c.newCacheCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// application builds the application on first use, so commands that need no
// backend never load the configuration.
func (c *CLI) application(cmd *cobra.Command) (Application, error) {
	if c.app != nil {
		return c.app, nil
	}
	a, err := c.setup(cmd.Context(), c.configPath, c.opts)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

// pairs parses repeated key=value flag values.
func pairs(flag string, values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, zerr.With(zerr.New("expected key=value"), "flag", "--"+flag+" "+v)
		}
		out[strings.TrimSpace(key)] = value
	}
	return out, nil
}

package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/estatedesk/internal/app"
)

func (c *CLI) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the collection cache",
	}
	cmd.AddCommand(c.newCacheStatsCmd())
	cmd.AddCommand(c.newCacheClearCmd())
	return cmd
}

func (c *CLI) newCacheStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [views...]",
		Short: "Show cache usage, loading the given views first",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			metrics, _ := cmd.Flags().GetBool("metrics")
			a, err := c.application(cmd)
			if err != nil {
				return err
			}
			return a.CacheStats(cmd.Context(), app.CacheStatsOptions{Warm: args, Metrics: metrics})
		},
	}
	cmd.Flags().Bool("metrics", false, "Print the Prometheus text exposition")
	return cmd
}

func (c *CLI) newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [resource]",
		Short: "Invalidate one cache slot, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.application(cmd)
			if err != nil {
				return err
			}
			var resource string
			if len(args) == 1 {
				resource = args[0]
			}
			return a.CacheClear(resource)
		},
	}
}

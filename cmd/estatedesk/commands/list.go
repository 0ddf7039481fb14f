package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/estatedesk/internal/app"
)

func (c *CLI) newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <view>",
		Short: "Show one page of a view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			search, _ := cmd.Flags().GetString("search")
			page, _ := cmd.Flags().GetInt("page")
			rawFilters, _ := cmd.Flags().GetStringArray("filter")

			filters, err := pairs("filter", rawFilters)
			if err != nil {
				return err
			}
			a, err := c.application(cmd)
			if err != nil {
				return err
			}
			return a.List(cmd.Context(), args[0], app.ListOptions{
				Search:  search,
				Filters: filters,
				Page:    page,
			})
		},
	}
	cmd.Flags().StringP("search", "s", "", "Case-insensitive text search over the view's searchable columns")
	cmd.Flags().StringArray("filter", nil, "Filter as name=value; repeatable")
	cmd.Flags().IntP("page", "p", 1, "Page to display")
	return cmd
}

func (c *CLI) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <view> <id>",
		Short: "Show a single record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.application(cmd)
			if err != nil {
				return err
			}
			return a.Show(cmd.Context(), args[0], args[1])
		},
	}
}

func (c *CLI) newViewsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "views",
		Short: "List the available views and their filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.application(cmd)
			if err != nil {
				return err
			}
			return a.Views()
		},
	}
}

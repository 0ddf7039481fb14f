package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/estatedesk/internal/app"
)

func (c *CLI) newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <view> <id>",
		Short: "Delete a record after confirmation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			a, err := c.application(cmd)
			if err != nil {
				return err
			}
			return a.Delete(cmd.Context(), args[0], args[1], yes)
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation question")
	return cmd
}

func (c *CLI) newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <view>",
		Short: "Create a record from --field values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := c.fields(cmd)
			if err != nil {
				return err
			}
			a, err := c.application(cmd)
			if err != nil {
				return err
			}
			return a.Create(cmd.Context(), args[0], fields)
		},
	}
	cmd.Flags().StringArrayP("field", "f", nil, "Field as key=value; repeatable")
	_ = cmd.MarkFlagRequired("field")
	return cmd
}

func (c *CLI) newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <view> <id>",
		Short: "Update fields of a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := c.fields(cmd)
			if err != nil {
				return err
			}
			a, err := c.application(cmd)
			if err != nil {
				return err
			}
			return a.Update(cmd.Context(), args[0], args[1], fields)
		},
	}
	cmd.Flags().StringArrayP("field", "f", nil, "Field as key=value; repeatable")
	_ = cmd.MarkFlagRequired("field")
	return cmd
}

func (c *CLI) newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <property-id> <file>",
		Short: "Attach a document to a property",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			docType, _ := cmd.Flags().GetString("type")
			notes, _ := cmd.Flags().GetString("notes")
			a, err := c.application(cmd)
			if err != nil {
				return err
			}
			return a.Upload(cmd.Context(), app.UploadOptions{
				PropertyID: args[0],
				Path:       args[1],
				Type:       docType,
				Notes:      notes,
			})
		},
	}
	cmd.Flags().StringP("type", "t", "", "Document type, e.g. \"Plano catastral\"")
	cmd.Flags().StringP("notes", "n", "", "Free-text notes, up to 500 characters")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func (c *CLI) fields(cmd *cobra.Command) (map[string]string, error) {
	raw, _ := cmd.Flags().GetStringArray("field")
	return pairs("field", raw)
}

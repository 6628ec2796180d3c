package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openpbrl/openpbrl/internal/app/bootstrap"
	"github.com/openpbrl/openpbrl/pkg/utils"
)

func newRunsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect relabeling runs",
	}
	cmd.AddCommand(newRunsGetCommand())
	cmd.AddCommand(newRunsListCommand())
	return cmd
}

func newRunsGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <run-id>",
		Short: "Show one relabeling run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
				resp, err := app.Service.GetRun(ctx, args[0])
				if err != nil {
					return err
				}
				out, err := utils.PrettyJSON(resp)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	return cmd
}

func newRunsListCommand() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent relabeling runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
				resp, err := app.Service.ListRuns(ctx, limit, offset)
				if err != nil {
					return err
				}
				out, err := utils.PrettyJSON(resp)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum runs to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "runs to skip")
	return cmd
}

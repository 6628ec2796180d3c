package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openpbrl/openpbrl/internal/app/bootstrap"
	"github.com/openpbrl/openpbrl/pkg/utils"
)

func newDatasetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Manage stored transition datasets",
	}
	cmd.AddCommand(newDatasetUploadCommand())
	cmd.AddCommand(newDatasetStatsCommand())
	return cmd
}

func newDatasetUploadCommand() *cobra.Command {
	var key, file string
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Validate and store a transition dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
				data, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				if err := app.Service.UploadDataset(ctx, key, data); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "dataset stored under %s\n", key)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "artifact key for the dataset")
	cmd.Flags().StringVar(&file, "file", "", "path to the dataset JSON file")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newDatasetStatsCommand() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize a stored transition dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
				stats, err := app.Service.DatasetStats(ctx, key)
				if err != nil {
					return err
				}
				out, err := utils.PrettyJSON(stats)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "artifact key of the dataset")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

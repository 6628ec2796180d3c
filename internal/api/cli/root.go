// Package cli implements the openpbrl command line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openpbrl/openpbrl/internal/app/bootstrap"
	"github.com/openpbrl/openpbrl/pkg/config"
)

var cfgFile string

// NewRootCommand builds the openpbrl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "openpbrl",
		Short: "Preference-based reward learning over offline RL datasets",
		Long: "openpbrl samples trajectory preference corpora from offline transition\n" +
			"datasets, trains a latent reward model on synthetic preferences, and\n" +
			"relabels transitions with the learned rewards.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")

	root.AddCommand(newDatasetCommand())
	root.AddCommand(newCorpusCommand())
	root.AddCommand(newTrainCommand())
	root.AddCommand(newRelabelCommand())
	root.AddCommand(newRunsCommand())
	root.AddCommand(newVersionCommand())
	return root
}

// Execute runs the CLI and returns the process exit error.
func Execute() error {
	return NewRootCommand().Execute()
}

// withApp loads configuration, wires the application, runs fn, and tears
// everything down afterwards.
func withApp(ctx context.Context, fn func(ctx context.Context, app *bootstrap.App) error) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("wire application: %w", err)
	}
	defer app.Close(ctx)
	return fn(ctx, app)
}

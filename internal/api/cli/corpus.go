package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openpbrl/openpbrl/internal/app/bootstrap"
	"github.com/openpbrl/openpbrl/internal/app/dto"
	"github.com/openpbrl/openpbrl/pkg/utils"
)

func newCorpusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Manage preference corpora",
	}
	cmd.AddCommand(newCorpusGenerateCommand())
	return cmd
}

func newCorpusGenerateCommand() *cobra.Command {
	req := &dto.RelabelRequest{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Sample trajectory pairs and persist the preference corpus",
		Long: "Samples terminal-free trajectory windows from a stored dataset,\n" +
			"scores each pair with the Bradley-Terry preference model, and\n" +
			"writes the resulting corpus to the artifact store. Reuses an\n" +
			"existing corpus with the same parameters when one is cached.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
				resp, err := app.Service.BuildCorpus(ctx, req)
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
	cmd.Flags().StringVar(&req.DatasetKey, "dataset-key", "", "artifact key of the input dataset")
	cmd.Flags().IntVar(&req.NumPairs, "num-pairs", 0, "trajectory pairs to sample (0 uses config)")
	cmd.Flags().IntVar(&req.TrajectoryLen, "trajectory-len", 0, "window length (0 uses config)")
	cmd.Flags().Uint64Var(&req.Seed, "seed", 0, "RNG seed (0 uses wall clock)")
	_ = cmd.MarkFlagRequired("dataset-key")
	return cmd
}

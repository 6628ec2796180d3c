package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openpbrl/openpbrl/internal/app/bootstrap"
	"github.com/openpbrl/openpbrl/internal/app/dto"
	"github.com/openpbrl/openpbrl/pkg/utils"
)

func newRelabelCommand() *cobra.Command {
	req := &dto.RelabelRequest{}
	cmd := &cobra.Command{
		Use:   "relabel",
		Short: "Run the full relabeling pipeline over a stored dataset",
		Long: "Builds (or reuses) a preference corpus, trains the latent reward\n" +
			"model, evaluates it, and writes the relabeled transitions back to\n" +
			"the artifact store. Runs synchronously.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
				resp, err := app.Service.RunSync(ctx, req)
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
	cmd.Flags().StringVar(&req.OutputKey, "output-key", "", "artifact key for the relabeled output")
	cmd.Flags().IntVar(&req.NumPairs, "num-pairs", 0, "trajectory pairs to sample (0 uses config)")
	cmd.Flags().IntVar(&req.TrajectoryLen, "trajectory-len", 0, "window length (0 uses config)")
	cmd.Flags().IntVar(&req.Epochs, "epochs", 0, "training epochs (0 uses config)")
	cmd.Flags().IntVar(&req.Patience, "patience", 0, "early-stopping patience (0 uses config)")
	cmd.Flags().Float64Var(&req.LearningRate, "learning-rate", 0, "Adam step size (0 uses config)")
	cmd.Flags().IntVar(&req.HiddenDim, "hidden-dim", 0, "hidden layer width (0 uses config)")
	cmd.Flags().Uint64Var(&req.Seed, "seed", 0, "RNG seed (0 uses wall clock)")
	_ = cmd.MarkFlagRequired("dataset-key")
	return cmd
}

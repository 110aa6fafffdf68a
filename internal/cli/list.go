package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/emerald/internal/cli/render"
	"github.com/trebuchet-org/emerald/internal/usecase"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var params usecase.ListDeploymentsParams

	cmd := &cobra.Command{
		Use:     "list [query]",
		Aliases: []string{"ls"},
		Short:   "List deployments recorded in artifacts",
		Long: `List the deployments recorded in the networks section of each artifact.

By default the entries of the selected network are listed. With --check the
node is asked whether each contract still has code and its transaction is known.`,
		Example: `  # List deployments on the selected network
  emerald list

  # List Token deployments on mordor and check them on chain
  emerald list Token --network mordor --check

  # List the entries of every network
  emerald list --all`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			if len(args) > 0 {
				params.Query = args[0]
			}

			result, err := app.ListDeployments.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			return render.NewDeploymentsRenderer(cmd.OutOrStdout()).RenderDeploymentList(result)
		},
	}

	cmd.Flags().String("artifacts-dir", "", "Directory holding the artifacts (default build/contracts)")
	cmd.Flags().StringVar(&params.NetworkKey, "network-key", "", "Networks entry to list (defaults to the chain id)")
	cmd.Flags().BoolVar(&params.All, "all", false, "List the entries of every network")
	cmd.Flags().BoolVar(&params.Check, "check", false, "Check each deployment on chain")
	cmd.MarkFlagsMutuallyExclusive("all", "check")

	return cmd
}

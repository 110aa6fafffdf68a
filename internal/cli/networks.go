package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/emerald/internal/cli/render"
	"github.com/trebuchet-org/emerald/internal/usecase"
)

// NewNetworksCmd creates the networks command
func NewNetworksCmd() *cobra.Command {
	var probe bool

	cmd := &cobra.Command{
		Use:   "networks",
		Short: "List available networks from emerald.toml",
		Long: `List all networks configured in the [networks] section of emerald.toml.

With --probe every endpoint is asked for its chain id, which also checks that
a configured chain_id matches the node.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListNetworks.Run(cmd.Context(), usecase.ListNetworksParams{Probe: probe})
			if err != nil {
				return err
			}

			return render.NewNetworksRenderer(cmd.OutOrStdout()).RenderNetworksList(result)
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "Query each endpoint for its chain id")

	return cmd
}

package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/emerald/internal/cli/render"
	"github.com/trebuchet-org/emerald/internal/config"
	"github.com/trebuchet-org/emerald/internal/domain"
	"github.com/trebuchet-org/emerald/internal/usecase"
)

// NewDeployCmd creates the deploy command group
func NewDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy contracts or a dapp",
		Long:  "Deploy compiled contracts to a network, or publish the built dapp to IPFS.",
	}

	cmd.AddCommand(NewDeployContractCmd())
	cmd.AddCommand(NewDeployIPFSCmd())

	return cmd
}

// NewDeployContractCmd creates the deploy contract subcommand
func NewDeployContractCmd() *cobra.Command {
	var (
		planPath   string
		only       string
		networkKey string
		summary    bool
	)

	cmd := &cobra.Command{
		Use:   "contract [artifact.json...]",
		Short: "Deploy compiled contracts to the selected network",
		Long: `Deploy compiled contract artifacts one at a time. Each deployment is
confirmed on chain and recorded in its artifact under networks.<chain id>
before the next artifact is submitted. The first failure stops the run.

Artifacts are taken from the arguments, from a plan file (--plan), or
discovered under build/contracts in lexical order.

Examples:
  emerald deploy contract
  emerald deploy contract build/contracts/Token.json --network mordor
  emerald deploy contract --plan deploy.yaml --summary
  emerald deploy contract --only token --redeploy skip`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			resolved, err := app.ResolveArtifacts.Run(ctx, usecase.ResolveArtifactsParams{
				Paths:        args,
				PlanPath:     planPath,
				ArtifactsDir: app.Config.Deploy.ArtifactsDir,
				Query:        only,
			})
			if err != nil {
				return err
			}

			// A plan names its network unless --network overrides it
			network := app.Config.Network
			if resolved.Network != "" && !cmd.Flags().Changed("network") {
				resolver, err := config.NewNetworkResolver(app.Config.ProjectRoot)
				if err != nil {
					return err
				}
				if network, err = resolver.Resolve(resolved.Network); err != nil {
					return err
				}
			}

			policy, err := domain.ParseRedeployPolicy(app.Config.Deploy.Redeploy)
			if err != nil {
				return err
			}

			result, err := app.DeployContracts.Run(ctx, usecase.DeployContractsParams{
				Locations:           resolved.Locations,
				Network:             network,
				NetworkKey:          networkKey,
				ConfirmationTimeout: app.Config.Deploy.ConfirmationTimeout,
				Redeploy:            policy,
				NonInteractive:      app.Config.NonInteractive,
			})
			if err != nil {
				return err
			}

			if !summary {
				return nil
			}
			return render.NewDeployRenderer(cmd.OutOrStdout()).RenderSummary(network.Name, result)
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "YAML plan listing the network and artifacts to deploy")
	cmd.Flags().StringVar(&only, "only", "", "Only deploy discovered artifacts whose name fuzzy-matches this")
	cmd.Flags().StringVar(&networkKey, "network-key", "", "Key of the networks entry to write (defaults to the chain id)")
	cmd.Flags().BoolVar(&summary, "summary", false, "Print a table of the deployed artifacts")
	cmd.Flags().String("redeploy", "", "What to do with artifacts already deployed on the chain: always, skip or prompt")
	cmd.Flags().Duration("confirmation-timeout", 0, "How long to wait for each deployment to be mined (default 5m)")
	cmd.Flags().String("artifacts-dir", "", "Directory searched for artifacts (default build/contracts)")
	cmd.Flags().String("keystore", "", "Encrypted key file used to sign deployments")

	return cmd
}

// NewDeployIPFSCmd creates the deploy ipfs subcommand
func NewDeployIPFSCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ipfs",
		Short: "Publish the built dapp to IPFS",
		Long: `Add the dapp directory (build/app by default) to the local IPFS node and
print the gateway links of its root.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.PublishIPFS.Run(cmd.Context(), usecase.PublishIPFSParams{})
			if err != nil {
				return err
			}

			return render.NewIPFSRenderer(cmd.OutOrStdout()).RenderPublish(result)
		},
	}

	cmd.Flags().String("path", "", "Directory to publish (default build/app)")
	cmd.Flags().String("ipfs-api", "", "IPFS HTTP API address (default http://localhost:5002)")

	return cmd
}

package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/emerald/internal/cli/render"
	"github.com/trebuchet-org/emerald/internal/usecase"
)

// NewCompileCmd creates the compile command
func NewCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile solidity sources into build/contracts",
		Long: `Compile every .sol file under contracts/ with solc and write one artifact
per contract into build/contracts. The artifacts directory is emptied first,
so previous deployment records are dropped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.CompileContracts.Run(cmd.Context(), usecase.CompileContractsParams{
				SourcesDir:   app.Config.Compiler.SourcesDir,
				ArtifactsDir: app.Config.Deploy.ArtifactsDir,
			})
			if err != nil {
				return err
			}

			return render.NewCompileRenderer(cmd.OutOrStdout()).RenderCompile(result)
		},
	}

	cmd.Flags().String("solc", "", "solc binary to run (default solc from PATH)")
	cmd.Flags().String("artifacts-dir", "", "Directory the artifacts are written to (default build/contracts)")

	return cmd
}

package cli

import (
	"runtime"
	"sort"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/emerald/internal/usecase"
)

// NewToolCmds creates one command per bundled tool
func NewToolCmds() []*cobra.Command {
	tools := usecase.Tools(runtime.GOOS)

	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	sort.Strings(names)

	cmds := make([]*cobra.Command, 0, len(names))
	for _, name := range names {
		var cmd *cobra.Command
		if name == usecase.ToolMultiGeth {
			cmd = newMultiGethCmd(tools[name].Description)
		} else {
			cmd = newToolCmd(name, tools[name].Description)
		}
		cmd.Flags().String("tools-dir", "", "Directory holding the bundled binaries")
		cmds = append(cmds, cmd)
	}
	return cmds
}

func newToolCmd(name, description string) *cobra.Command {
	return &cobra.Command{
		Use:   name + " [-- args...]",
		Short: "Run " + description,
		Long: "Run " + description + ` in the foreground until it exits or is interrupted.
Arguments after -- replace the default arguments.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return launch(cmd, name, args)
		},
	}
}

func newMultiGethCmd(description string) *cobra.Command {
	var classic, eth bool

	cmd := &cobra.Command{
		Use:   usecase.ToolMultiGeth + " [-- args...]",
		Short: "Run " + description,
		Long: `Run a multi-geth node serving JSON-RPC on 127.0.0.1:8545.
Ethereum Classic is the default; --eth selects Ethereum mainnet.
Arguments after -- replace the default arguments.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = usecase.MultiGethArgs(classic || !eth)
			}
			return launch(cmd, usecase.ToolMultiGeth, args)
		},
	}

	cmd.Flags().BoolVar(&classic, "classic", false, "Ethereum Classic network (default)")
	cmd.Flags().BoolVar(&eth, "eth", false, "Ethereum network")
	cmd.MarkFlagsMutuallyExclusive("classic", "eth")

	return cmd
}

func launch(cmd *cobra.Command, name string, args []string) error {
	app, err := getApp(cmd)
	if err != nil {
		return err
	}

	params := usecase.LaunchToolParams{Name: name}
	if len(args) > 0 {
		params.Args = args
	}
	return app.LaunchTool.Run(cmd.Context(), params)
}

package usecase

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/trebuchet-org/emerald/internal/domain"
)

// Tool names
const (
	ToolVault     = "vault"
	ToolTestRPC   = "testrpc"
	ToolWallet    = "wallet"
	ToolExplorer  = "explorer"
	ToolIPFS      = "ipfs"
	ToolMultiGeth = "multi-geth"
)

// multiGethArgs serve the JSON-RPC API on the local testrpc port
var multiGethArgs = []string{
	"--syncmode=fast",
	"--rpc",
	"--rpcport", "8545",
	"--rpcaddr", "127.0.0.1",
	"--rpccorsdomain=localhost",
	"--rpcapi", "eth,web3,net",
}

// MultiGethArgs returns the multi-geth arguments for Ethereum Classic or,
// when classic is false, Ethereum mainnet
func MultiGethArgs(classic bool) []string {
	args := append([]string(nil), multiGethArgs...)
	if classic {
		args = append(args, "--classic")
	}
	return args
}

// Tools returns the bundled programs for the given operating system
func Tools(goos string) map[string]domain.Tool {
	wallet := domain.Tool{
		Name:        ToolWallet,
		Description: "Emerald Wallet desktop application",
		Binary:      "EmeraldWallet.AppImage",
	}
	switch goos {
	case "darwin":
		wallet.Binary = "EmeraldWallet.app"
		wallet.Open = true
	case "windows":
		wallet.Binary = "EmeraldWallet.exe"
	}

	return map[string]domain.Tool{
		ToolVault: {
			Name:        ToolVault,
			Description: "Emerald Vault key management server",
			Binary:      "emerald-vault",
			Args:        []string{"server"},
		},
		ToolTestRPC: {
			Name:        ToolTestRPC,
			Description: "Local Ethereum Classic development chain (svmdev) on port 8545",
			Binary:      "svmdev",
		},
		ToolWallet: wallet,
		ToolExplorer: {
			Name:        ToolExplorer,
			Description: "Block explorer, opened in the default browser",
			Binary:      "explorer/index.html",
			Open:        true,
		},
		ToolIPFS: {
			Name:        ToolIPFS,
			Description: "IPFS daemon",
			Binary:      "ipfs",
			Args:        []string{"daemon"},
		},
		ToolMultiGeth: {
			Name:        ToolMultiGeth,
			Description: "multi-geth node (Ethereum Classic by default)",
			Binary:      "geth",
			Args:        MultiGethArgs(true),
		},
	}
}

// LaunchTool starts one of the bundled programs in the foreground
type LaunchTool struct {
	launcher ToolLauncher
	tools    map[string]domain.Tool
}

// NewLaunchTool creates a new LaunchTool use case
func NewLaunchTool(launcher ToolLauncher) *LaunchTool {
	return &LaunchTool{
		launcher: launcher,
		tools:    Tools(runtime.GOOS),
	}
}

// LaunchToolParams contains parameters for launching a tool
type LaunchToolParams struct {
	Name string
	// Args replace the default arguments of the tool when not nil
	Args []string
}

// Run executes the use case
func (uc *LaunchTool) Run(ctx context.Context, params LaunchToolParams) error {
	tool, ok := uc.tools[params.Name]
	if !ok {
		return fmt.Errorf("unknown tool %q (available: %v)", params.Name, uc.Names())
	}

	args := tool.Args
	if params.Args != nil {
		args = params.Args
	}

	return uc.launcher.Launch(ctx, tool, args)
}

// Names returns the known tool names in sorted order
func (uc *LaunchTool) Names() []string {
	names := make([]string, 0, len(uc.tools))
	for name := range uc.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package config

import (
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string

	// Network selected for this invocation; nil if not specified
	Network *Network
	// Networks holds every network declared in emerald.toml
	Networks map[string]*Network

	// Execution settings
	Debug          bool
	NonInteractive bool
	Timeout        time.Duration

	Deploy   DeployConfig
	Signer   SignerConfig
	Tools    ToolsConfig
	Compiler CompilerConfig
	IPFS     IPFSConfig

	// ConfigSource is the project file the settings were read from, if any
	ConfigSource string
}

// Network represents network configuration
type Network struct {
	// ChainID is 0 when it has to be fetched from the RPC endpoint
	ChainID     uint64 `json:"chainId"`
	Name        string `json:"name"`
	RPCURL      string `json:"rpcUrl"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
}

// DeployConfig holds settings of the contract deployment run
type DeployConfig struct {
	ArtifactsDir        string
	ConfirmationTimeout time.Duration
	Redeploy            string
	GasLimitBufferPct   uint64
}

// SignerConfig selects the key that signs deployment transactions
type SignerConfig struct {
	PrivateKey string
	Keystore   string
	Passphrase string
}

// ToolsConfig locates the bundled third-party binaries
type ToolsConfig struct {
	Dir    string
	UsePTY bool
}

// CompilerConfig configures the solidity compiler invocation
type CompilerConfig struct {
	Solc       string
	SourcesDir string
}

// IPFSConfig configures the IPFS HTTP API and gateways
type IPFSConfig struct {
	APIURL           string
	GatewayURL       string
	PublicGatewayURL string
	AppDir           string
}

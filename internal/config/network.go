package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/trebuchet-org/emerald/internal/domain"
	"github.com/trebuchet-org/emerald/internal/domain/config"
)

const (
	// ProjectFileName is the project configuration file searched for upwards from the working directory
	ProjectFileName = "emerald.toml"

	// DefaultNetwork is used when no network is selected
	DefaultNetwork = "dev"

	// DefaultDevRPCURL is the local testrpc / multi-geth endpoint
	DefaultDevRPCURL = "http://127.0.0.1:8545"
)

// NetworkResolver resolves network names to configurations
type NetworkResolver struct {
	networks map[string]*config.Network
}

// NewNetworkResolver creates a resolver over the [networks] tables of emerald.toml.
// A missing project file yields a resolver that only knows the dev network.
func NewNetworkResolver(projectRoot string) (*NetworkResolver, error) {
	networks, err := loadNetworks(filepath.Join(projectRoot, ProjectFileName))
	if err != nil {
		return nil, err
	}
	return &NetworkResolver{networks: networks}, nil
}

// Networks returns all configured networks keyed by name
func (r *NetworkResolver) Networks() map[string]*config.Network {
	out := make(map[string]*config.Network, len(r.networks))
	for name, n := range r.networks {
		c := *n
		out[name] = &c
	}
	return out
}

// Names returns the configured network names in sorted order
func (r *NetworkResolver) Names() []string {
	names := make([]string, 0, len(r.networks))
	for name := range r.networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve resolves a network name to its configuration. A value that looks
// like an RPC URL is accepted as an ad-hoc network.
func (r *NetworkResolver) Resolve(networkName string) (*config.Network, error) {
	if networkName == "" {
		networkName = DefaultNetwork
	}

	if n, ok := r.networks[networkName]; ok {
		c := *n
		return &c, nil
	}

	if isRPCURL(networkName) {
		return &config.Network{
			Name:   networkName,
			RPCURL: networkName,
		}, nil
	}

	return nil, domain.UnknownNetworkErr{Name: networkName, Available: r.Names()}
}

// loadNetworks parses the [networks] tables, expanding ${VAR} references in RPC URLs.
// A network without rpc_url reads <NAME>_RPC_URL from the environment.
func loadNetworks(path string) (map[string]*config.Network, error) {
	networks := map[string]*config.Network{
		DefaultNetwork: {Name: DefaultNetwork, RPCURL: DefaultDevRPCURL},
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return networks, nil
	}

	var raw config.ProjectFile
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	for name, section := range raw.Networks {
		raw := strings.TrimSpace(section.RPCURL)
		if raw == "" {
			// fall back to the conventional variable, e.g. MORDOR_RPC_URL
			envVar := GenerateEnvVarName(name)
			if os.Getenv(envVar) == "" {
				return nil, fmt.Errorf("network '%s' has no rpc_url and %s is not set", name, envVar)
			}
			raw = "${" + envVar + "}"
		}

		rpcURL, err := ExpandEnv(raw)
		if err != nil {
			if envVar, ok := DetectEnvVar(raw); ok {
				return nil, fmt.Errorf("network '%s': set %s (e.g. in .env): %w", name, envVar, err)
			}
			return nil, fmt.Errorf("network '%s': %w", name, err)
		}

		explorer := section.ExplorerURL
		if explorer == "" {
			explorer = defaultExplorerURL(section.ChainID)
		}

		networks[name] = &config.Network{
			Name:        name,
			RPCURL:      rpcURL,
			ChainID:     section.ChainID,
			ExplorerURL: explorer,
		}
	}

	return networks, nil
}

func isRPCURL(s string) bool {
	for _, scheme := range []string{"http://", "https://", "ws://", "wss://"} {
		if strings.HasPrefix(s, scheme) {
			return true
		}
	}
	return false
}

// defaultExplorerURL returns a block explorer for well-known chains
func defaultExplorerURL(chainID uint64) string {
	switch chainID {
	case 1:
		return "https://etherscan.io"
	case 61:
		return "https://blockscout.com/etc/mainnet"
	case 63:
		return "https://blockscout.com/etc/mordor"
	case 11155111:
		return "https://sepolia.etherscan.io"
	default:
		return ""
	}
}

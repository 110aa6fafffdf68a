package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/trebuchet-org/emerald/internal/domain/config"
)

// ListNetworksParams contains parameters for listing networks
type ListNetworksParams struct {
	// Probe asks each endpoint for its chain id
	Probe bool
}

// ListNetworksResult contains the result of listing networks
type ListNetworksResult struct {
	Networks []NetworkStatus
	Selected string
}

// NetworkStatus represents the status of a network
type NetworkStatus struct {
	Name        string
	RPCURL      string
	ExplorerURL string
	ChainID     uint64
	Error       error
}

// ListNetworks is a use case for listing available networks
type ListNetworks struct {
	cfg       *config.RuntimeConfig
	deployers DeployerFactory
}

// NewListNetworks creates a new ListNetworks use case
func NewListNetworks(cfg *config.RuntimeConfig, deployers DeployerFactory) *ListNetworks {
	return &ListNetworks{
		cfg:       cfg,
		deployers: deployers,
	}
}

// Run executes the use case
func (uc *ListNetworks) Run(ctx context.Context, params ListNetworksParams) (*ListNetworksResult, error) {
	names := sortedKeys(uc.cfg.Networks)

	result := &ListNetworksResult{
		Networks: make([]NetworkStatus, 0, len(names)),
	}
	if uc.cfg.Network != nil {
		result.Selected = uc.cfg.Network.Name
	}

	for _, name := range names {
		network := uc.cfg.Networks[name]
		status := NetworkStatus{
			Name:        name,
			RPCURL:      network.RPCURL,
			ExplorerURL: network.ExplorerURL,
			ChainID:     network.ChainID,
		}

		if params.Probe {
			status.ChainID, status.Error = uc.probe(ctx, network)
		}

		result.Networks = append(result.Networks, status)
	}

	return result, nil
}

// probe asks the endpoint for its chain id, which also checks that a
// configured chain id matches the node
func (uc *ListNetworks) probe(ctx context.Context, network *config.Network) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	deployer, err := uc.deployers.Connect(ctx, network)
	if err != nil {
		return network.ChainID, err
	}
	defer deployer.Close()

	chainID, err := deployer.ChainID(ctx)
	if err != nil {
		return network.ChainID, err
	}
	return chainID, nil
}

func sortedKeys(networks map[string]*config.Network) []string {
	names := lo.Keys(networks)
	sort.Strings(names)
	return names
}

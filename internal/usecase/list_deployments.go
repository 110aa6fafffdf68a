package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/trebuchet-org/emerald/internal/domain"
	"github.com/trebuchet-org/emerald/internal/domain/config"
)

// DeploymentStatus is what is known about a recorded deployment
type DeploymentStatus string

const (
	// DeploymentRecorded is listed from the artifact without asking the node
	DeploymentRecorded DeploymentStatus = "recorded"
	// DeploymentLive has code at its address
	DeploymentLive DeploymentStatus = "live"
	// DeploymentMissing has no code at its address or no transaction on chain
	DeploymentMissing DeploymentStatus = "missing"
)

// ListDeploymentsParams contains parameters for listing deployments
type ListDeploymentsParams struct {
	ArtifactsDir string
	Query        string
	// NetworkKey selects the networks entry; the chain id of the selected network when empty
	NetworkKey string
	// All lists the entries of every network without contacting any node
	All bool
	// Check asks the node whether each deployment still exists
	Check bool
}

// DeploymentEntry is one networks entry of one artifact
type DeploymentEntry struct {
	Location        string
	ContractName    string
	NetworkKey      string
	Address         string
	TransactionHash string
	Status          DeploymentStatus
	BlockNumber     uint64
	Reason          string
}

// DeploymentListResult contains the listed deployments
type DeploymentListResult struct {
	Network     string
	NetworkKey  string
	Deployments []DeploymentEntry
	Summary     DeploymentSummary
}

// DeploymentSummary counts the listed deployments
type DeploymentSummary struct {
	Total      int
	ByNetwork  map[string]int
	Missing    int
	Undeployed []string
}

// ListDeployments lists the deployments recorded in artifact documents
type ListDeployments struct {
	config  *config.RuntimeConfig
	finder  ArtifactFinder
	store   ArtifactRepository
	checker DeploymentChecker
	sink    ProgressSink
	log     *slog.Logger
}

// NewListDeployments creates a new ListDeployments use case
func NewListDeployments(
	cfg *config.RuntimeConfig,
	finder ArtifactFinder,
	store ArtifactRepository,
	checker DeploymentChecker,
	sink ProgressSink,
	log *slog.Logger,
) *ListDeployments {
	if log == nil {
		log = slog.Default()
	}
	return &ListDeployments{
		config:  cfg,
		finder:  finder,
		store:   store,
		checker: checker,
		sink:    sink,
		log:     log,
	}
}

// Run executes the list deployments use case
func (uc *ListDeployments) Run(ctx context.Context, params ListDeploymentsParams) (*DeploymentListResult, error) {
	if params.All && params.Check {
		return nil, fmt.Errorf("--all and --check cannot be combined")
	}

	dir := params.ArtifactsDir
	if dir == "" {
		dir = uc.config.Deploy.ArtifactsDir
	}

	result := &DeploymentListResult{}
	if uc.config.Network != nil {
		result.Network = uc.config.Network.Name
	}

	key, err := uc.networkKey(ctx, params)
	if err != nil {
		return nil, err
	}
	if params.Check {
		defer uc.checker.Close()
	}
	result.NetworkKey = key

	locations, err := uc.finder.Find(ctx, dir, params.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to discover artifacts in %s: %w", dir, err)
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "loading",
		Total:   len(locations),
		Message: "Loading artifacts",
		Spinner: true,
	})

	for i, location := range locations {
		artifact, err := uc.store.Load(ctx, location)
		if err != nil {
			// compiler output that is not an artifact shares the directory
			uc.log.Debug("skipping unreadable artifact", "location", location, "error", err)
			continue
		}

		name := artifact.ContractName
		if name == "" {
			name = trimExt(location)
		}

		keys := []string{key}
		if params.All {
			keys = artifact.NetworkKeys()
		}

		found := false
		for _, k := range keys {
			rec, ok := artifact.Network(k)
			if !ok || !rec.Deployed() {
				continue
			}
			found = true

			entry := DeploymentEntry{
				Location:        location,
				ContractName:    name,
				NetworkKey:      k,
				Address:         rec.Address,
				TransactionHash: rec.TransactionHash,
				Status:          DeploymentRecorded,
			}
			if params.Check {
				if err := uc.check(ctx, &entry); err != nil {
					return nil, err
				}
			}
			result.Deployments = append(result.Deployments, entry)
		}
		if !found && !params.All {
			result.Summary.Undeployed = append(result.Summary.Undeployed, name)
		}

		uc.sink.OnProgress(ctx, ProgressEvent{
			Stage:   "loading",
			Current: i + 1,
			Total:   len(locations),
			Message: name,
			Spinner: true,
		})
	}

	sortDeploymentEntries(result.Deployments)
	summarize(result)

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Current: len(result.Deployments),
		Total:   len(result.Deployments),
		Message: "Deployments loaded",
	})

	return result, nil
}

// networkKey picks the networks entry to list. Only --check, or a network
// without a configured chain id, needs the node.
func (uc *ListDeployments) networkKey(ctx context.Context, params ListDeploymentsParams) (string, error) {
	if params.All {
		return "", nil
	}

	network := uc.config.Network
	if network == nil {
		return "", fmt.Errorf("no network selected")
	}

	if !params.Check {
		if params.NetworkKey != "" {
			return params.NetworkKey, nil
		}
		if network.ChainID != 0 {
			return domain.ChainKey(network.ChainID), nil
		}
	}

	chainID, err := uc.checker.Connect(ctx, network)
	if err != nil {
		return "", fmt.Errorf("failed to connect to network %s: %w", network.Name, err)
	}
	if !params.Check {
		uc.checker.Close()
	}

	if params.NetworkKey != "" {
		return params.NetworkKey, nil
	}
	return domain.ChainKey(chainID), nil
}

func (uc *ListDeployments) check(ctx context.Context, entry *DeploymentEntry) error {
	exists, reason, err := uc.checker.CheckDeploymentExists(ctx, entry.Address)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", entry.ContractName, err)
	}
	if !exists {
		entry.Status = DeploymentMissing
		entry.Reason = reason
		return nil
	}
	entry.Status = DeploymentLive

	if entry.TransactionHash == "" {
		return nil
	}
	exists, block, reason, err := uc.checker.CheckTransactionExists(ctx, entry.TransactionHash)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", entry.ContractName, err)
	}
	if !exists {
		entry.Status = DeploymentMissing
		entry.Reason = reason
		return nil
	}
	entry.BlockNumber = block
	return nil
}

// sortDeploymentEntries sorts by network key, then contract name, then location
func sortDeploymentEntries(entries []DeploymentEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].NetworkKey != entries[j].NetworkKey {
			return entries[i].NetworkKey < entries[j].NetworkKey
		}
		if entries[i].ContractName != entries[j].ContractName {
			return entries[i].ContractName < entries[j].ContractName
		}
		return entries[i].Location < entries[j].Location
	})
}

func summarize(result *DeploymentListResult) {
	result.Summary.Total = len(result.Deployments)
	result.Summary.ByNetwork = make(map[string]int)
	for _, d := range result.Deployments {
		result.Summary.ByNetwork[d.NetworkKey]++
		if d.Status == DeploymentMissing {
			result.Summary.Missing++
		}
	}
}

func trimExt(location string) string {
	base := filepath.Base(location)
	return base[:len(base)-len(filepath.Ext(base))]
}

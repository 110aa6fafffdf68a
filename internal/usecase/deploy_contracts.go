package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/trebuchet-org/emerald/internal/domain"
	"github.com/trebuchet-org/emerald/internal/domain/config"
)

// DefaultConfirmationTimeout bounds the wait for a deployment to be mined
const DefaultConfirmationTimeout = 5 * time.Minute

// DeployContracts deploys artifacts to one network, one at a time, and writes
// each deployment back into its artifact before the next one is submitted.
type DeployContracts struct {
	store     ArtifactRepository
	deployers DeployerFactory
	confirmer RedeployConfirmer
	progress  ProgressSink
	log       *slog.Logger
}

// NewDeployContracts creates a new DeployContracts use case
func NewDeployContracts(
	store ArtifactRepository,
	deployers DeployerFactory,
	confirmer RedeployConfirmer,
	progress ProgressSink,
	log *slog.Logger,
) *DeployContracts {
	if log == nil {
		log = slog.Default()
	}
	return &DeployContracts{
		store:     store,
		deployers: deployers,
		confirmer: confirmer,
		progress:  progress,
		log:       log,
	}
}

// DeployContractsParams contains parameters for a deployment run
type DeployContractsParams struct {
	Locations []string
	Network   *config.Network
	// NetworkKey is the networks entry to update; the decimal chain id when empty
	NetworkKey          string
	ConfirmationTimeout time.Duration
	Redeploy            domain.RedeployPolicy
	NonInteractive      bool
}

// DeployContractsResult contains the outcome of a deployment run
type DeployContractsResult struct {
	ChainID    uint64
	NetworkKey string
	Deployed   []domain.ArtifactOutcome
	Skipped    []string
}

// Run deploys every artifact in order and stops at the first failure. The
// returned result holds the artifacts completed so far even when an error is
// returned; a failure of an artifact is always a *domain.DeployError.
func (uc *DeployContracts) Run(ctx context.Context, params DeployContractsParams) (*DeployContractsResult, error) {
	if params.Network == nil {
		return nil, fmt.Errorf("no network selected")
	}

	timeout := params.ConfirmationTimeout
	if timeout <= 0 {
		timeout = DefaultConfirmationTimeout
	}

	policy := params.Redeploy
	if policy == "" {
		policy = domain.RedeployAlways
	}

	deployer, err := uc.deployers.Connect(ctx, params.Network)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to network %s: %w", params.Network.Name, err)
	}
	defer deployer.Close()

	chainID, err := deployer.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve chain id of network %s: %w", params.Network.Name, err)
	}

	key := params.NetworkKey
	if key == "" {
		key = domain.ChainKey(chainID)
	}

	result := &DeployContractsResult{
		ChainID:    chainID,
		NetworkKey: key,
	}

	run := &deployRun{
		deployer:       deployer,
		chainID:        chainID,
		key:            key,
		total:          len(params.Locations),
		timeout:        timeout,
		policy:         policy,
		nonInteractive: params.NonInteractive,
	}

	uc.log.Debug("starting deployment run",
		"network", params.Network.Name,
		"chain_id", chainID,
		"artifacts", run.total,
		"redeploy", policy,
	)

	for i, location := range params.Locations {
		// Stop between artifacts; the previous artifact is fully written by now
		if err := ctx.Err(); err != nil {
			return result, &domain.DeployError{
				Location: location,
				Index:    i,
				Kind:     domain.Cancelled,
				From:     domain.StatePending,
				Err:      err,
			}
		}

		outcome, err := uc.deployArtifact(ctx, run, i, location)
		if err != nil {
			return result, err
		}

		if outcome.State == domain.StateSkipped {
			result.Skipped = append(result.Skipped, location)
			continue
		}
		result.Deployed = append(result.Deployed, outcome)
	}

	return result, nil
}

// deployRun holds what stays fixed for all artifacts of a run
type deployRun struct {
	deployer       Deployer
	chainID        uint64
	key            string
	total          int
	timeout        time.Duration
	policy         domain.RedeployPolicy
	nonInteractive bool
}

// deployArtifact walks one artifact through pending, submitted, confirmed
// and persisted.
func (uc *DeployContracts) deployArtifact(ctx context.Context, run *deployRun, index int, location string) (domain.ArtifactOutcome, error) {
	outcome := domain.ArtifactOutcome{
		Location: location,
		ChainID:  run.chainID,
		State:    domain.StatePending,
	}

	fail := func(kind domain.DeployErrorKind, err error) error {
		from := outcome.State
		outcome.State = domain.StateFailed
		uc.report(ctx, run, index, outcome, err.Error())
		return &domain.DeployError{
			Location: location,
			Index:    index,
			Kind:     kind,
			From:     from,
			Err:      err,
		}
	}

	artifact, err := uc.store.Load(ctx, location)
	if err != nil {
		return outcome, fail(domain.ReadError, err)
	}
	outcome.ContractName = artifact.ContractName
	uc.report(ctx, run, index, outcome, "")

	if existing, ok := artifact.Network(run.key); ok && existing.Address != "" {
		redeploy, err := uc.shouldRedeploy(ctx, run, location, existing)
		if err != nil {
			return outcome, fail(domain.Cancelled, err)
		}
		if !redeploy {
			outcome.State = domain.StateSkipped
			outcome.Address = existing.Address
			outcome.TransactionHash = existing.TransactionHash
			uc.report(ctx, run, index, outcome, "already deployed")
			return outcome, nil
		}
		uc.log.Debug("redeploying artifact", "location", location, "previous_address", existing.Address)
	}

	if !artifact.HasBytecode() {
		return outcome, fail(domain.SubmitError, domain.ErrEmptyBytecode)
	}

	tx, err := run.deployer.Submit(ctx, artifact)
	if err != nil {
		return outcome, fail(domain.SubmitError, err)
	}
	outcome.State = domain.StateSubmitted
	outcome.TransactionHash = tx.Hash
	uc.report(ctx, run, index, outcome, tx.Hash)

	conf, err := uc.awaitConfirmation(ctx, run, tx)
	if err != nil {
		return outcome, fail(domain.ConfirmationError, err)
	}
	outcome.State = domain.StateConfirmed
	outcome.Address = conf.Address
	outcome.TransactionHash = conf.TransactionHash
	outcome.BlockNumber = conf.BlockNumber
	outcome.GasUsed = conf.GasUsed
	uc.report(ctx, run, index, outcome, conf.Address)

	artifact.RecordDeployment(run.key, conf.Address, conf.TransactionHash)

	// A confirmed deployment is written even if the run is being cancelled
	if err := uc.store.Save(context.WithoutCancel(ctx), location, artifact); err != nil {
		uc.log.Error("deployment confirmed but artifact not updated",
			"location", location,
			"network", run.key,
			"address", conf.Address,
			"transaction_hash", conf.TransactionHash,
			"error", err,
		)
		return outcome, fail(domain.WriteError, err)
	}
	outcome.State = domain.StatePersisted
	uc.report(ctx, run, index, outcome, "")

	return outcome, nil
}

func (uc *DeployContracts) awaitConfirmation(ctx context.Context, run *deployRun, tx *domain.PendingTx) (*domain.Confirmation, error) {
	waitCtx, cancel := context.WithTimeout(ctx, run.timeout)
	defer cancel()

	conf, err := run.deployer.AwaitConfirmation(waitCtx, tx, run.timeout)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("transaction %s not confirmed within %s: %w", tx.Hash, run.timeout, err)
		}
		return nil, err
	}
	if conf.Address == "" || conf.TransactionHash == "" {
		return nil, fmt.Errorf("transaction %s confirmed without a contract address", tx.Hash)
	}
	return conf, nil
}

func (uc *DeployContracts) shouldRedeploy(ctx context.Context, run *deployRun, location string, existing *domain.DeploymentRecord) (bool, error) {
	switch run.policy {
	case domain.RedeploySkip:
		return false, nil
	case domain.RedeployPrompt:
		if run.nonInteractive || uc.confirmer == nil {
			return true, nil
		}
		return uc.confirmer.ConfirmRedeploy(ctx, location, run.chainID, existing)
	default:
		return true, nil
	}
}

func (uc *DeployContracts) report(ctx context.Context, run *deployRun, index int, outcome domain.ArtifactOutcome, message string) {
	uc.log.Debug("artifact state",
		"location", outcome.Location,
		"state", outcome.State,
		"message", message,
	)
	if uc.progress == nil {
		return
	}
	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:    string(outcome.State),
		Current:  index + 1,
		Total:    run.total,
		Message:  message,
		Spinner:  outcome.State == domain.StateSubmitted,
		Metadata: outcome,
	})
}

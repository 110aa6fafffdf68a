package usecase

import (
	"context"
	"time"

	"github.com/trebuchet-org/emerald/internal/domain"
	"github.com/trebuchet-org/emerald/internal/domain/config"
)

// ArtifactRepository reads and writes artifact documents by location
type ArtifactRepository interface {
	Load(ctx context.Context, location string) (*domain.Artifact, error)
	// Save replaces the document at location atomically: readers see either
	// the previous content or the new one, never a mix.
	Save(ctx context.Context, location string, artifact *domain.Artifact) error
	// Reset removes every artifact under dir, creating dir if needed
	Reset(ctx context.Context, dir string) error
}

// Deployer submits contract creations to one network and waits for them
type Deployer interface {
	ChainID(ctx context.Context) (uint64, error)
	Submit(ctx context.Context, artifact *domain.Artifact) (*domain.PendingTx, error)
	AwaitConfirmation(ctx context.Context, tx *domain.PendingTx, timeout time.Duration) (*domain.Confirmation, error)
	Close()
}

// DeployerFactory connects a Deployer to a network
type DeployerFactory interface {
	Connect(ctx context.Context, network *config.Network) (Deployer, error)
}

// RedeployConfirmer asks whether an already deployed artifact is deployed again
type RedeployConfirmer interface {
	ConfirmRedeploy(ctx context.Context, location string, chainID uint64, existing *domain.DeploymentRecord) (bool, error)
}

// DeploymentChecker inspects recorded deployments on one network
type DeploymentChecker interface {
	// Connect dials the network and returns its chain id. A configured
	// chain id that differs from the node's is an error.
	Connect(ctx context.Context, network *config.Network) (uint64, error)
	CheckDeploymentExists(ctx context.Context, address string) (exists bool, reason string, err error)
	CheckTransactionExists(ctx context.Context, txHash string) (exists bool, blockNumber uint64, reason string, err error)
	Close()
}

// ArtifactFinder discovers artifact and source files
type ArtifactFinder interface {
	// Find returns the artifact documents under dir in lexical order,
	// fuzzy-filtered by query when it is not empty.
	Find(ctx context.Context, dir string, query string) ([]string, error)
	// Sources returns the solidity sources under dir in lexical order
	Sources(ctx context.Context, dir string) ([]string, error)
}

// PlanLoader reads deployment plan files
type PlanLoader interface {
	LoadPlan(ctx context.Context, path string) (*domain.Plan, error)
}

// ContractCompiler compiles solidity sources
type ContractCompiler interface {
	Compile(ctx context.Context, sources []string) ([]*domain.CompiledContract, error)
}

// IPFSUploader adds a directory tree to IPFS
type IPFSUploader interface {
	AddDirectory(ctx context.Context, dir string) ([]domain.IPFSEntry, error)
}

// ToolLauncher runs the bundled third-party programs
type ToolLauncher interface {
	// Resolve returns the path Launch would execute for tool
	Resolve(tool domain.Tool) (string, error)
	// Launch runs tool in the foreground until it exits or ctx is done
	Launch(ctx context.Context, tool domain.Tool, args []string) error
}

// LocalConfigRepository manages local configuration persistence
type LocalConfigRepository interface {
	Exists() bool
	Load(ctx context.Context) (*config.LocalConfig, error)
	Save(ctx context.Context, config *config.LocalConfig) error
	GetPath() string
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

package app

import (
	"log/slog"

	"github.com/trebuchet-org/emerald/internal/domain/config"
	"github.com/trebuchet-org/emerald/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Use cases
	DeployContracts  *usecase.DeployContracts
	ResolveArtifacts *usecase.ResolveArtifacts
	CompileContracts *usecase.CompileContracts
	PublishIPFS      *usecase.PublishIPFS
	LaunchTool       *usecase.LaunchTool
	ListNetworks     *usecase.ListNetworks
	ListDeployments  *usecase.ListDeployments
	ShowConfig       *usecase.ShowConfig
	SetConfig        *usecase.SetConfig
	RemoveConfig     *usecase.RemoveConfig
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	deployContracts *usecase.DeployContracts,
	resolveArtifacts *usecase.ResolveArtifacts,
	compileContracts *usecase.CompileContracts,
	publishIPFS *usecase.PublishIPFS,
	launchTool *usecase.LaunchTool,
	listNetworks *usecase.ListNetworks,
	listDeployments *usecase.ListDeployments,
	showConfig *usecase.ShowConfig,
	setConfig *usecase.SetConfig,
	removeConfig *usecase.RemoveConfig,
) (*App, error) {
	return &App{
		Config:           cfg,
		Log:              log,
		DeployContracts:  deployContracts,
		ResolveArtifacts: resolveArtifacts,
		CompileContracts: compileContracts,
		PublishIPFS:      publishIPFS,
		LaunchTool:       launchTool,
		ListNetworks:     listNetworks,
		ListDeployments:  listDeployments,
		ShowConfig:       showConfig,
		SetConfig:        setConfig,
		RemoveConfig:     removeConfig,
	}, nil
}

//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/emerald/internal/adapters"
	"github.com/trebuchet-org/emerald/internal/config"
	"github.com/trebuchet-org/emerald/internal/logging"
	"github.com/trebuchet-org/emerald/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper, sink usecase.ProgressSink) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewDeployContracts,
		usecase.NewResolveArtifacts,
		usecase.NewCompileContracts,
		usecase.NewPublishIPFS,
		usecase.NewLaunchTool,
		usecase.NewListNetworks,
		usecase.NewListDeployments,
		usecase.NewShowConfig,
		usecase.NewSetConfig,
		usecase.NewRemoveConfig,

		// App
		NewApp,
	)
	return nil, nil
}

package usecase

import (
	"context"

	"github.com/trebuchet-org/emerald/internal/domain/config"
)

// ShowConfigResult contains the result of showing configuration
type ShowConfigResult struct {
	Config     *config.LocalConfig
	ConfigPath string
	Exists     bool
	// ConfigSource is the project file, empty when there is none
	ConfigSource string
	// Effective values after flags, environment and files are merged
	Network  string
	Redeploy string
}

// ShowConfig is a use case for showing configuration
type ShowConfig struct {
	store LocalConfigRepository
	cfg   *config.RuntimeConfig
}

// NewShowConfig creates a new ShowConfig use case
func NewShowConfig(store LocalConfigRepository, cfg *config.RuntimeConfig) *ShowConfig {
	return &ShowConfig{
		store: store,
		cfg:   cfg,
	}
}

// Run executes the show config use case
func (uc *ShowConfig) Run(ctx context.Context) (*ShowConfigResult, error) {
	exists := uc.store.Exists()

	localConfig, err := uc.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	result := &ShowConfigResult{
		Config:       localConfig,
		ConfigPath:   uc.store.GetPath(),
		Exists:       exists,
		ConfigSource: uc.cfg.ConfigSource,
		Redeploy:     uc.cfg.Deploy.Redeploy,
	}
	if uc.cfg.Network != nil {
		result.Network = uc.cfg.Network.Name
	}
	return result, nil
}

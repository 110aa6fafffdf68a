package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/trebuchet-org/emerald/internal/domain"
	"github.com/trebuchet-org/emerald/internal/domain/config"
)

// SetConfigParams contains parameters for setting configuration
type SetConfigParams struct {
	Key   string
	Value string
}

// SetConfigResult contains the result of setting configuration
type SetConfigResult struct {
	UpdatedConfig *config.LocalConfig
	ConfigPath    string
	Key           config.ConfigKey
	Value         string
}

// SetConfig is a use case for setting configuration values
type SetConfig struct {
	store    LocalConfigRepository
	networks map[string]*config.Network
}

// NewSetConfig creates a new SetConfig use case
func NewSetConfig(store LocalConfigRepository, cfg *config.RuntimeConfig) *SetConfig {
	return &SetConfig{
		store:    store,
		networks: cfg.Networks,
	}
}

// Run executes the set config use case
func (uc *SetConfig) Run(ctx context.Context, params SetConfigParams) (*SetConfigResult, error) {
	key, ok := config.ParseConfigKey(params.Key)
	if !ok {
		return nil, unknownConfigKey(params.Key)
	}

	value := strings.TrimSpace(params.Value)
	if value == "" {
		return nil, fmt.Errorf("empty value for %s; use 'config remove %s' to unset it", key, key)
	}

	switch key {
	case config.ConfigKeyRedeploy:
		policy, err := domain.ParseRedeployPolicy(value)
		if err != nil {
			return nil, err
		}
		value = string(policy)
	case config.ConfigKeyNetwork:
		if _, known := uc.networks[value]; !known && !strings.Contains(value, "://") {
			return nil, domain.UnknownNetworkErr{Name: value, Available: sortedKeys(uc.networks)}
		}
	}

	localConfig, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	localConfig.Set(key, value)

	if err := uc.store.Save(ctx, localConfig); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}

	return &SetConfigResult{
		UpdatedConfig: localConfig,
		ConfigPath:    uc.store.GetPath(),
		Key:           key,
		Value:         value,
	}, nil
}

func unknownConfigKey(key string) error {
	valid := make([]string, 0, len(config.ValidConfigKeys()))
	for _, k := range config.ValidConfigKeys() {
		valid = append(valid, string(k))
	}
	return fmt.Errorf("unknown config key: %s\nAvailable keys: %s", key, strings.Join(valid, ", "))
}

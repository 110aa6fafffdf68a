package config

import "strings"

// ConfigKey names a setting of the local config file
type ConfigKey string

const (
	ConfigKeyNetwork  ConfigKey = "network"
	ConfigKeyRedeploy ConfigKey = "redeploy"
)

// LocalConfig is .emerald/config.local.json. Its layout mirrors the viper
// keys so the file can be merged into the settings as is.
type LocalConfig struct {
	Network string            `json:"network,omitempty"`
	Deploy  LocalDeployConfig `json:"deploy,omitzero"`
}

// LocalDeployConfig holds the [deploy] settings of the local config
type LocalDeployConfig struct {
	Redeploy string `json:"redeploy,omitempty"`
}

// ValidConfigKeys returns all valid configuration keys
func ValidConfigKeys() []ConfigKey {
	return []ConfigKey{ConfigKeyNetwork, ConfigKeyRedeploy}
}

// ParseConfigKey normalizes key and reports whether it is known
func ParseConfigKey(key string) (ConfigKey, bool) {
	k := ConfigKey(strings.ToLower(strings.TrimSpace(key)))
	for _, valid := range ValidConfigKeys() {
		if k == valid {
			return k, true
		}
	}
	return "", false
}

// Get returns the value stored for key
func (c *LocalConfig) Get(key ConfigKey) string {
	switch key {
	case ConfigKeyNetwork:
		return c.Network
	case ConfigKeyRedeploy:
		return c.Deploy.Redeploy
	}
	return ""
}

// Set stores value for key; an empty value removes it
func (c *LocalConfig) Set(key ConfigKey, value string) {
	switch key {
	case ConfigKeyNetwork:
		c.Network = value
	case ConfigKeyRedeploy:
		c.Deploy.Redeploy = value
	}
}

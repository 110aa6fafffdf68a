package render

import (
	"fmt"
	"io"

	"github.com/trebuchet-org/emerald/internal/domain/config"
	"github.com/trebuchet-org/emerald/internal/usecase"
)

// ConfigRenderer renders config-related output
type ConfigRenderer struct {
	out io.Writer
}

// NewConfigRenderer creates a new config renderer
func NewConfigRenderer(out io.Writer) *ConfigRenderer {
	return &ConfigRenderer{
		out: out,
	}
}

// RenderConfig renders the configuration display
func (r *ConfigRenderer) RenderConfig(result *usecase.ShowConfigResult) error {
	fmt.Fprintln(r.out, "📋 Current config:")
	fmt.Fprintf(r.out, "Network:   %s\n", result.Network)
	fmt.Fprintf(r.out, "Redeploy:  %s\n", result.Redeploy)

	if result.ConfigSource != "" {
		fmt.Fprintf(r.out, "\n📦 Config source: %s\n", result.ConfigSource)
	}

	if !result.Exists {
		fmt.Fprintf(r.out, "📁 No local config file (%s)\n", relativePath(result.ConfigPath))
		return nil
	}

	fmt.Fprintf(r.out, "📁 Local config file: %s\n", relativePath(result.ConfigPath))
	for _, key := range config.ValidConfigKeys() {
		if v := result.Config.Get(key); v != "" {
			fmt.Fprintf(r.out, "   %s = %s\n", key, v)
		}
	}
	return nil
}

// RenderSet renders the result of setting a configuration value
func (r *ConfigRenderer) RenderSet(result *usecase.SetConfigResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Set %s to: %s", result.Key, result.Value)))
	fmt.Fprintf(r.out, "📁 config saved to: %s\n", relativePath(result.ConfigPath))
	return nil
}

// RenderRemove renders the result of removing a configuration value
func (r *ConfigRenderer) RenderRemove(result *usecase.RemoveConfigResult) error {
	switch result.Key {
	case config.ConfigKeyNetwork:
		fmt.Fprintln(r.out, FormatSuccess("Removed network from config (defaults to dev)"))
	case config.ConfigKeyRedeploy:
		fmt.Fprintln(r.out, FormatSuccess("Removed redeploy from config (defaults to always)"))
	}

	fmt.Fprintf(r.out, "📁 config saved to: %s\n", relativePath(result.ConfigPath))
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/emerald/internal/domain"
	"github.com/trebuchet-org/emerald/internal/domain/config"
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		DataDir:        filepath.Join(projectRoot, ".emerald"),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		Timeout:        v.GetDuration("timeout"),
		Deploy: config.DeployConfig{
			ArtifactsDir:        resolvePath(projectRoot, v.GetString("deploy.artifacts_dir")),
			ConfirmationTimeout: v.GetDuration("deploy.confirmation_timeout"),
			Redeploy:            v.GetString("deploy.redeploy"),
			GasLimitBufferPct:   v.GetUint64("deploy.gas_limit_buffer"),
		},
		Tools: config.ToolsConfig{
			Dir:    v.GetString("tools.dir"),
			UsePTY: v.GetBool("tools.pty"),
		},
		Compiler: config.CompilerConfig{
			Solc:       v.GetString("compiler.solc"),
			SourcesDir: resolvePath(projectRoot, v.GetString("compiler.sources_dir")),
		},
		IPFS: config.IPFSConfig{
			APIURL:           v.GetString("ipfs.api_url"),
			GatewayURL:       v.GetString("ipfs.gateway_url"),
			PublicGatewayURL: v.GetString("ipfs.public_gateway_url"),
			AppDir:           resolvePath(projectRoot, v.GetString("ipfs.app_dir")),
		},
	}

	if cfg.Deploy.ConfirmationTimeout <= 0 {
		return nil, fmt.Errorf("deploy.confirmation_timeout must be positive")
	}
	if _, err := domain.ParseRedeployPolicy(cfg.Deploy.Redeploy); err != nil {
		return nil, err
	}

	signer, err := signerConfig(v, projectRoot)
	if err != nil {
		return nil, err
	}
	cfg.Signer = signer

	if _, err := os.Stat(filepath.Join(projectRoot, ProjectFileName)); err == nil {
		cfg.ConfigSource = ProjectFileName
	}

	resolver, err := NewNetworkResolver(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load networks: %w", err)
	}
	cfg.Networks = resolver.Networks()

	network, err := resolver.Resolve(v.GetString("network"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve network: %w", err)
	}
	cfg.Network = network

	return cfg, nil
}

// signerConfig reads the deployment key settings, expanding ${VAR} references
func signerConfig(v *viper.Viper, projectRoot string) (config.SignerConfig, error) {
	var sc config.SignerConfig
	for key, dst := range map[string]*string{
		"signer.private_key": &sc.PrivateKey,
		"signer.keystore":    &sc.Keystore,
		"signer.passphrase":  &sc.Passphrase,
	} {
		val, err := ExpandEnv(v.GetString(key))
		if err != nil {
			return sc, fmt.Errorf("%s: %w", key, err)
		}
		*dst = val
	}
	if sc.Keystore != "" {
		sc.Keystore = resolvePath(projectRoot, sc.Keystore)
	}
	return sc, nil
}

// FindProjectRoot walks up from the current directory to find emerald.toml.
// Without a project file the current directory is the project root.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := cwd
	for {
		if _, err := os.Stat(filepath.Join(dir, ProjectFileName)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, flags *pflag.FlagSet) (*viper.Viper, error) {
	LoadDotEnv(projectRoot)

	v := viper.New()

	// Project file
	v.SetConfigName("emerald")
	v.SetConfigType("toml")
	v.AddConfigPath(projectRoot)

	// Set up environment variables
	v.SetEnvPrefix("EMERALD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Set defaults
	v.SetDefault("project_root", projectRoot)
	v.SetDefault("timeout", "0s")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("network", "")
	v.SetDefault("deploy.artifacts_dir", filepath.Join("build", "contracts"))
	v.SetDefault("deploy.confirmation_timeout", "5m")
	v.SetDefault("deploy.redeploy", string(domain.RedeployAlways))
	v.SetDefault("deploy.gas_limit_buffer", 20)
	v.SetDefault("signer.private_key", "")
	v.SetDefault("signer.keystore", "")
	v.SetDefault("signer.passphrase", "")
	v.SetDefault("tools.dir", defaultToolsDir())
	v.SetDefault("tools.pty", true)
	v.SetDefault("compiler.solc", "solc")
	v.SetDefault("compiler.sources_dir", "contracts")
	v.SetDefault("ipfs.api_url", "http://localhost:5002")
	v.SetDefault("ipfs.gateway_url", "http://localhost:9090")
	v.SetDefault("ipfs.public_gateway_url", "http://gateway.ipfs.io")
	v.SetDefault("ipfs.app_dir", filepath.Join("build", "app"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read %s: %w", ProjectFileName, err)
		}
	}

	// Per-checkout overrides that are not committed
	localPath := filepath.Join(projectRoot, ".emerald", "config.local.json")
	if f, err := os.Open(localPath); err == nil {
		defer f.Close()
		v.SetConfigType("json")
		if err := v.MergeConfig(f); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", localPath, err)
		}
	}

	// Only flags the user actually set override lower layers
	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed || bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(key, f)
		})
		if bindErr != nil {
			return nil, bindErr
		}
	}

	return v, nil
}

// flagKeys maps command-line flags to configuration keys
var flagKeys = map[string]string{
	"debug":                "debug",
	"non-interactive":      "non_interactive",
	"network":              "network",
	"timeout":              "timeout",
	"artifacts-dir":        "deploy.artifacts_dir",
	"confirmation-timeout": "deploy.confirmation_timeout",
	"redeploy":             "deploy.redeploy",
	"keystore":             "signer.keystore",
	"tools-dir":            "tools.dir",
	"solc":                 "compiler.solc",
	"ipfs-api":             "ipfs.api_url",
	"path":                 "ipfs.app_dir",
}

// defaultToolsDir is the directory holding the emerald executable, where the
// bundled binaries are installed next to it.
func defaultToolsDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Dir(exe)
}

func resolvePath(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

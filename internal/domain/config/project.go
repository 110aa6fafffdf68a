package config

// ProjectFile is the part of emerald.toml that is decoded structurally.
// Scalar settings ([deploy], [signer], [tools], ...) are read through viper.
type ProjectFile struct {
	Networks map[string]NetworkSection `toml:"networks"`
}

// NetworkSection is one [networks.<name>] table
type NetworkSection struct {
	RPCURL      string `toml:"rpc_url"`
	ChainID     uint64 `toml:"chain_id"`
	ExplorerURL string `toml:"explorer_url"`
}

// Package deploy submits the token contract's construction transaction to a
// BSC-style test network and records the resulting deployment artifact.
//
// Compilation is out of scope: the pipeline compiles the generated source
// with a pinned solc (0.8.19, optimize 200 runs) and hands the creation
// bytecode to this package.
package deploy

import (
	"errors"
	"os"
)

// BSC testnet defaults, matching the deployment pipeline.
const (
	DefaultRPCURL  = "https://data-seed-prebsc-1-s1.binance.org:8545/"
	DefaultChainID = 97
	NetworkName    = "BSC Testnet"

	ExplorerAddressURL = "https://testnet.bscscan.com/address/"
	ExplorerVerifyURL  = "https://testnet.bscscan.com/verifyContract?a="
)

// Config combines everything required to create a deployment client.
type Config struct {
	RPCURL     string
	PrivateKey string // hex, with or without 0x prefix
	ChainID    int64
}

// ConfigFromEnv builds a Config from the environment: PRIVATE_KEY is the
// deployer credential (supplied out-of-band, never stored), BSC_RPC_URL
// overrides the default endpoint.
func ConfigFromEnv() Config {
	cfg := Config{
		RPCURL:     os.Getenv("BSC_RPC_URL"),
		PrivateKey: os.Getenv("PRIVATE_KEY"),
		ChainID:    DefaultChainID,
	}
	if cfg.RPCURL == "" {
		cfg.RPCURL = DefaultRPCURL
	}
	return cfg
}

// Validate reports obvious configuration errors before dialing.
func (cfg *Config) Validate() error {
	if cfg.RPCURL == "" {
		return errors.New("deploy: invalid config: no RPC URL defined")
	}
	if cfg.PrivateKey == "" {
		return errors.New("deploy: invalid config: no private key defined")
	}
	if cfg.ChainID == 0 {
		return errors.New("deploy: invalid config: no chain ID defined")
	}
	return nil
}

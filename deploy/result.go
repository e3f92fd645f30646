package deploy

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Result holds the outcome of a confirmed deployment.
type Result struct {
	ContractAddress string    `json:"contract_address"`
	TransactionHash string    `json:"transaction_hash"`
	BlockNumber     uint64    `json:"block_number"`
	GasUsed         uint64    `json:"gas_used"`
	DeployerAddress string    `json:"deployer_address"`
	Network         string    `json:"network"`
	DeploymentTime  time.Time `json:"deployment_time"`
	ExplorerURL     string    `json:"bscscan_url"`
	VerificationURL string    `json:"verification_url"`
}

// Verification is the block-explorer verification settings block. The values
// must match the compiler invocation exactly or source verification fails.
type Verification struct {
	CompilerType         string `json:"compiler_type"`
	CompilerVersion      string `json:"compiler_version"`
	LicenseType          string `json:"license_type"`
	OptimizationEnabled  bool   `json:"optimization_enabled"`
	OptimizationRuns     int    `json:"optimization_runs"`
	ConstructorArguments string `json:"constructor_arguments"`
}

// DefaultVerification returns the settings for the pinned compiler.
func DefaultVerification() Verification {
	return Verification{
		CompilerType:         "Solidity (Single file)",
		CompilerVersion:      "v0.8.19+commit.7dd6d404",
		LicenseType:          "MIT License (MIT)",
		OptimizationEnabled:  true,
		OptimizationRuns:     200,
		ConstructorArguments: "NONE - Leave empty",
	}
}

// Artifact is the published build artifact: deployment info, verification
// settings, and the contract ABI.
type Artifact struct {
	Deployment   Result          `json:"deployment_info"`
	Verification Verification    `json:"verification_settings"`
	ABI          json.RawMessage `json:"abi"`
}

// WriteArtifact writes the deployment artifact as indented JSON.
func (r *Result) WriteArtifact(path string, abiJSON []byte) error {
	artifact := Artifact{
		Deployment:   *r,
		Verification: DefaultVerification(),
		ABI:          abiJSON,
	}
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("deploy: marshal artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("deploy: write artifact: %w", err)
	}
	return nil
}

// WriteGitHubOutputs appends the deployment outputs to the file named by
// GITHUB_OUTPUT, when running inside a workflow. Outside of one it is a
// no-op.
func (r *Result) WriteGitHubOutputs() error {
	path := os.Getenv("GITHUB_OUTPUT")
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("deploy: open GITHUB_OUTPUT: %w", err)
	}
	defer f.Close()

	_, err = fmt.Fprintf(f,
		"contract_address=%s\ntransaction_hash=%s\nbscscan_url=%s\nverification_url=%s\n",
		r.ContractAddress, r.TransactionHash, r.ExplorerURL, r.VerificationURL)
	if err != nil {
		return fmt.Errorf("deploy: write GITHUB_OUTPUT: %w", err)
	}
	return nil
}

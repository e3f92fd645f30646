package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/metacore-xyz/go-metacore/codegen/solidity"
	"github.com/metacore-xyz/go-metacore/deploy"
)

func deployContract(args []string) error {
	fs := flag.NewFlagSet("deploy", flag.ExitOnError)
	binPath := fs.String("bin", "", "Creation bytecode file (solc --bin output, hex)")
	output := fs.String("output", "deployment_result.json", "Deployment artifact path")
	timeout := fs.Duration("timeout", 5*time.Minute, "Confirmation timeout")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: metacore deploy --bin <MetacoreToken.bin> [options]

Submit the contract construction transaction to BSC testnet and write the
deployment artifact. Credentials come from the environment:

  PRIVATE_KEY   deployer private key (hex, required)
  BSC_RPC_URL   RPC endpoint (default %s)

Options:
`, deploy.DefaultRPCURL)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *binPath == "" {
		fs.Usage()
		return fmt.Errorf("--bin required")
	}

	raw, err := os.ReadFile(*binPath)
	if err != nil {
		return fmt.Errorf("read bytecode: %w", err)
	}
	hexStr := strings.TrimPrefix(strings.TrimSpace(string(raw)), "0x")
	bytecode, err := hex.DecodeString(hexStr)
	if err != nil {
		return fmt.Errorf("decode bytecode: %w", err)
	}

	cfg := deploy.ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}

	client, err := deploy.NewClient(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Printf("Deploying to %s as %s...\n", deploy.NetworkName, client.Address().Hex())

	result, err := client.Deploy(ctx, solidity.ABI(), bytecode)
	if err != nil {
		return fmt.Errorf("deploy: %w", err)
	}

	fmt.Printf("Contract:    %s\n", result.ContractAddress)
	fmt.Printf("Transaction: %s\n", result.TransactionHash)
	fmt.Printf("Block:       %d\n", result.BlockNumber)
	fmt.Printf("Gas used:    %d\n", result.GasUsed)
	fmt.Printf("Explorer:    %s\n", result.ExplorerURL)

	if err := result.WriteArtifact(*output, []byte(solidity.ABI())); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", *output)

	return result.WriteGitHubOutputs()
}

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/metacore-xyz/go-metacore/codegen/solidity"
)

func codegen(args []string) error {
	fs := flag.NewFlagSet("codegen", flag.ExitOnError)
	output := fs.String("output", ".", "Output directory")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: metacore codegen [options]

Generate the Solidity contract source and ABI JSON.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := os.MkdirAll(*output, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	contract := solidity.DefaultContract()
	name := solidity.ContractName(contract.Name)

	solPath := filepath.Join(*output, name+".sol")
	if err := os.WriteFile(solPath, []byte(solidity.Generate(contract)), 0o644); err != nil {
		return fmt.Errorf("write contract: %w", err)
	}
	fmt.Printf("Wrote %s\n", solPath)

	abiPath := filepath.Join(*output, name+".abi.json")
	if err := os.WriteFile(abiPath, []byte(solidity.ABI()), 0o644); err != nil {
		return fmt.Errorf("write ABI: %w", err)
	}
	fmt.Printf("Wrote %s\n", abiPath)

	return nil
}

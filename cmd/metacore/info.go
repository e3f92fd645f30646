package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"

	"github.com/metacore-xyz/go-metacore/token"
)

func info(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	deployerHex := fs.String("deployer", "", "Deployer address (0x-prefixed hex)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: metacore info --deployer <address>

Print the token metadata a fresh deployment by the given address would have.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if !common.IsHexAddress(*deployerHex) {
		fs.Usage()
		return fmt.Errorf("valid --deployer address required")
	}

	ledger := token.New(common.HexToAddress(*deployerHex))
	meta := ledger.ContractInfo()

	fmt.Printf("Name:         %s\n", meta.Name)
	fmt.Printf("Symbol:       %s\n", meta.Symbol)
	fmt.Printf("Decimals:     %d\n", meta.Decimals)
	fmt.Printf("Total supply: %s\n", meta.TotalSupply.Dec())
	fmt.Printf("Owner:        %s\n", meta.Owner.Hex())
	fmt.Printf("Contract:     %s\n", meta.Contract.Hex())

	return nil
}

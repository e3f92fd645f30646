package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/metacore-xyz/go-metacore/token"
)

// scriptOp is one line of a simulation script.
type scriptOp struct {
	Op      string `json:"op"`
	Caller  string `json:"caller"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	Spender string `json:"spender,omitempty"`
	Value   string `json:"value"`
}

func simulate(args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	deployerHex := fs.String("deployer", "", "Deployer address (0x-prefixed hex)")
	strict := fs.Bool("strict", false, "Stop on the first rejected operation")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: metacore simulate <ops.jsonl> [options]

Run a scripted operation sequence against a fresh ledger. Each line of the
script is a JSON object:

  {"op":"transfer","caller":"0x...","to":"0x...","value":"1000"}
  {"op":"approve","caller":"0x...","spender":"0x...","value":"500"}
  {"op":"transferFrom","caller":"0x...","from":"0x...","to":"0x...","value":"200"}
  {"op":"mint","caller":"0x...","to":"0x...","value":"10"}

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("script file required")
	}
	if !common.IsHexAddress(*deployerHex) {
		fs.Usage()
		return fmt.Errorf("valid --deployer address required")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("open script: %w", err)
	}
	defer f.Close()

	ledger := token.New(common.HexToAddress(*deployerHex))

	applied, rejected := 0, 0
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var op scriptOp
		if err := json.Unmarshal([]byte(text), &op); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := applyOp(ledger, op); err != nil {
			rejected++
			fmt.Printf("line %-4d REJECTED %-12s %v\n", line, op.Op, err)
			if *strict {
				return fmt.Errorf("line %d: %w", line, err)
			}
			continue
		}
		applied++
		fmt.Printf("line %-4d ok       %s\n", line, op.Op)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	fmt.Printf("\n=== Result (%d applied, %d rejected) ===\n\n", applied, rejected)
	fmt.Printf("Total supply: %s\n\nBalances:\n", ledger.TotalSupply().Dec())

	balances := ledger.Balances()
	addrs := make([]common.Address, 0, len(balances))
	for addr := range balances {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return strings.Compare(addrs[i].Hex(), addrs[j].Hex()) < 0
	})
	for _, addr := range addrs {
		fmt.Printf("  %s  %s\n", addr.Hex(), balances[addr].Dec())
	}

	if violations := ledger.Violations(); len(violations) > 0 {
		for _, v := range violations {
			fmt.Printf("\nINVARIANT VIOLATED: %s: %s\n", v.Name, v.Detail)
		}
		return fmt.Errorf("ledger failed invariant check")
	}
	fmt.Println("\nInvariants: ok")

	return nil
}

func applyOp(ledger *token.Ledger, op scriptOp) error {
	caller, err := parseAddr(op.Caller, "caller")
	if err != nil {
		return err
	}
	value, err := uint256.FromDecimal(op.Value)
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", op.Value, err)
	}

	switch op.Op {
	case "transfer":
		to, err := parseAddr(op.To, "to")
		if err != nil {
			return err
		}
		_, err = ledger.Transfer(caller, to, value)
		return err
	case "approve":
		spender, err := parseAddr(op.Spender, "spender")
		if err != nil {
			return err
		}
		_, err = ledger.Approve(caller, spender, value)
		return err
	case "transferFrom":
		from, err := parseAddr(op.From, "from")
		if err != nil {
			return err
		}
		to, err := parseAddr(op.To, "to")
		if err != nil {
			return err
		}
		_, err = ledger.TransferFrom(caller, from, to, value)
		return err
	case "mint":
		to, err := parseAddr(op.To, "to")
		if err != nil {
			return err
		}
		return ledger.Mint(caller, to, value)
	default:
		return fmt.Errorf("unknown op %q", op.Op)
	}
}

func parseAddr(s, field string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid %s address %q", field, s)
	}
	return common.HexToAddress(s), nil
}

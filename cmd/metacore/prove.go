package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/metacore-xyz/go-metacore/eventsource"
	"github.com/metacore-xyz/go-metacore/prover"
)

func prove(args []string) error {
	fs := flag.NewFlagSet("prove", flag.ExitOnError)
	dbPath := fs.String("db", "", "SQLite journal database path")
	stream := fs.String("stream", "metacore", "Journal stream name")
	output := fs.String("output", "", "Write the proof JSON to this file (default stdout)")
	keysDir := fs.String("keys", "", "Load/save circuit keys in this directory (skips repeated setup)")
	verifier := fs.String("verifier", "", "Also export the Solidity verifier to this file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: metacore prove --db <ledger.db> [options]

Generate a zero-knowledge solvency proof: the journal's balance snapshot sums
to its total supply, without revealing individual balances. Snapshots are
limited to %d holders.

Options:
`, prover.NumSlots)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *dbPath == "" {
		fs.Usage()
		return fmt.Errorf("--db required")
	}

	store, err := eventsource.NewSQLiteStore(*dbPath)
	if err != nil {
		return fmt.Errorf("open journal database: %w", err)
	}
	defer store.Close()

	journal, err := eventsource.Open(context.Background(), store, *stream)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	ledger := journal.Ledger()

	p, err := loadOrSetup(*keysDir)
	if err != nil {
		return err
	}

	proof, err := p.ProveSnapshot(ledger.Balances(), ledger.TotalSupply())
	if err != nil {
		return err
	}
	if err := p.VerifySnapshot(ledger.Balances(), ledger.TotalSupply()); err != nil {
		return fmt.Errorf("local verification failed: %w", err)
	}

	data, err := json.MarshalIndent(proof, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal proof: %w", err)
	}
	if *output == "" {
		fmt.Println(string(data))
	} else {
		if err := os.WriteFile(*output, data, 0o644); err != nil {
			return fmt.Errorf("write proof: %w", err)
		}
		fmt.Printf("Wrote %s (%d constraints, verified locally)\n", *output, proof.Constraints)
	}

	if *verifier != "" {
		src, err := p.ExportVerifier()
		if err != nil {
			return err
		}
		if err := os.WriteFile(*verifier, []byte(src), 0o644); err != nil {
			return fmt.Errorf("write verifier: %w", err)
		}
		fmt.Printf("Wrote %s\n", *verifier)
	}

	return nil
}

// loadOrSetup reuses persisted circuit keys when available, otherwise runs
// setup (and persists the result when a keys directory was given).
func loadOrSetup(keysDir string) (*prover.Prover, error) {
	if keysDir != "" {
		if p, err := prover.LoadKeys(keysDir); err == nil {
			return p, nil
		}
	}
	p, err := prover.New()
	if err != nil {
		return nil, err
	}
	if keysDir != "" {
		if err := p.SaveKeys(keysDir); err != nil {
			return nil, err
		}
	}
	return p, nil
}

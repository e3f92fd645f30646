package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/metacore-xyz/go-metacore/eventlog"
	"github.com/metacore-xyz/go-metacore/eventsource"
)

func events(args []string) error {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	dbPath := fs.String("db", "", "SQLite journal database path")
	stream := fs.String("stream", "metacore", "Journal stream name")
	format := fs.String("format", "jsonl", "Output format: jsonl or csv")
	output := fs.String("output", "", "Output file (default stdout)")
	kindFilter := fs.String("kind", "", "Filter by notification kind (Transfer, Approval, ContractDeployed)")
	addrFilter := fs.String("address", "", "Filter by address appearing in any field")
	showSummary := fs.Bool("summary", false, "Print summary statistics instead of records")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: metacore events --db <ledger.db> [options]

Replay a persisted journal and export its notification log.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Export all notifications as JSONL
  metacore events --db ledger.db

  # Transfers touching one address, as CSV
  metacore events --db ledger.db --kind Transfer --address 0xabc... --format csv --output transfers.csv

  # Summary statistics
  metacore events --db ledger.db --summary
`)
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

	log := eventlog.FromLedger(journal.Ledger().Events())
	if *kindFilter != "" {
		log = log.FilterKind(*kindFilter)
	}
	if *addrFilter != "" {
		log = log.FilterAddress(*addrFilter)
	}

	if *showSummary {
		s := log.Summarize()
		fmt.Printf("Records:           %d\n", s.NumRecords)
		for kind, n := range s.PerKind {
			fmt.Printf("  %-16s %d\n", kind+":", n)
		}
		fmt.Printf("Addresses:         %d\n", s.NumAddresses)
		fmt.Printf("Total transferred: %s\n", s.TotalTransferred)
		if s.NumRecords > 0 {
			fmt.Printf("First:             %s\n", s.StartTime)
			fmt.Printf("Last:              %s\n", s.EndTime)
		}
		return nil
	}

	switch *format {
	case "jsonl":
		if *output == "" {
			return log.WriteJSONL(os.Stdout)
		}
		return log.WriteJSONLFile(*output)
	case "csv":
		if *output == "" {
			return log.WriteCSV(os.Stdout)
		}
		return log.WriteCSVFile(*output)
	default:
		return fmt.Errorf("unknown format %q (want jsonl or csv)", *format)
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/ethereum/go-ethereum/common"

	"github.com/metacore-xyz/go-metacore/eventsource"
	"github.com/metacore-xyz/go-metacore/server"
	"github.com/metacore-xyz/go-metacore/token"
)

func serve(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":8080", "Listen address")
	deployerHex := fs.String("deployer", "", "Deployer address for a fresh ledger (0x-prefixed hex)")
	dbPath := fs.String("db", "", "SQLite journal database (persists operations across restarts)")
	stream := fs.String("stream", "metacore", "Journal stream name")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: metacore serve --deployer <address> [options]

Start the event stream server. Without --db the ledger is in-memory and lost
on exit; with --db every accepted operation is journaled and the ledger is
rebuilt by replay on restart. Endpoints:

  GET  /info     token metadata
  GET  /events   notification log (query: kind, address)
  POST /op       apply an operation
  GET  /ws       live notification stream (query: kind, address)

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	var srv *server.Server
	if *dbPath != "" {
		store, err := eventsource.NewSQLiteStore(*dbPath)
		if err != nil {
			return fmt.Errorf("open journal database: %w", err)
		}
		defer store.Close()

		journal, err := openOrCreate(store, *stream, *deployerHex)
		if err != nil {
			return err
		}
		srv = server.NewJournaled(journal)
	} else {
		if !common.IsHexAddress(*deployerHex) {
			fs.Usage()
			return fmt.Errorf("valid --deployer address required")
		}
		srv = server.New(token.New(common.HexToAddress(*deployerHex)))
	}

	log.Printf("serving on %s", *addr)
	return http.ListenAndServe(*addr, srv.Handler())
}

// openOrCreate replays an existing stream, or starts one when the database is
// fresh (which requires a deployer address).
func openOrCreate(store eventsource.Store, stream, deployerHex string) (*eventsource.Journal, error) {
	ctx := context.Background()
	journal, err := eventsource.Open(ctx, store, stream)
	if err == nil {
		log.Printf("replayed journal stream %q at version %d", stream, journal.Version())
		return journal, nil
	}
	if !errors.Is(err, eventsource.ErrStreamNotFound) {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	if !common.IsHexAddress(deployerHex) {
		return nil, fmt.Errorf("stream %q does not exist; valid --deployer address required to create it", stream)
	}
	journal, err = eventsource.Create(ctx, store, stream, common.HexToAddress(deployerHex))
	if err != nil {
		return nil, fmt.Errorf("create journal: %w", err)
	}
	log.Printf("created journal stream %q", stream)
	return journal, nil
}

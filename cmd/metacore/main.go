package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		if err := info(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "simulate":
		if err := simulate(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "events":
		if err := events(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "codegen":
		if err := codegen(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "deploy":
		if err := deployContract(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "serve":
		if err := serve(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "prove":
		if err := prove(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("metacore version 1.0.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`metacore - Metacore token ledger tool

Usage:
  metacore <command> [options]

Commands:
  info       Print token metadata for a fresh deployment
  simulate   Run a scripted operation sequence against a fresh ledger
  events     Export a journal's notification log to JSONL or CSV
  codegen    Generate the Solidity contract and ABI
  deploy     Deploy the compiled contract to BSC testnet
  serve      Start the event stream server
  prove      Generate a zero-knowledge solvency proof for a balance snapshot
  help       Show this help message
  version    Show version information

Examples:
  # Run a scripted sequence
  metacore simulate ops.jsonl --deployer 0xYourAddress

  # Export a journal to CSV
  metacore events --db ledger.db --stream metacore --format csv --output events.csv

  # Generate contract sources
  metacore codegen --output contracts/

  # Start the server
  metacore serve --addr :8080

For command-specific help, run:
  metacore <command> --help`)
}

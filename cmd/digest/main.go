// Package main provides the digest command-line tool, a thin shell
// around internal/validate's library core: load a store, decode a
// request, run the driver, print the report.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("digest version %s (%s) built %s\n", version, commit, date)
		return ExitSuccess
	}

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		return ExitUsage
	}

	switch args[0] {
	case "validate":
		return runValidateCmd(args[1:])
	case "serve-store":
		return runServeStore(args[1:])
	case "config":
		return runConfigRoot(args[1:])
	case "help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
		printUsage()
		return ExitUsage
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `digest - functional-coherence validation for gene/disease identifier sets

Usage:
  digest [options] <command> [arguments]

Commands:
  validate      Run a validation request against a loaded store
  serve-store   Print the file sizes of a store directory
  config        Show, get, or set configuration values
  help          Show this help message

Global Options:
  --version     Show version information

Examples:
  # Inspect a store before running a validation
  digest serve-store -store ./digest-store

  # Run a validation request and print the JSON report
  digest validate -input request.json

  # Persist a lower default replacement percentage
  digest config set replace_pct 25

For more information on a command, use:
  digest <command> --help
`)
}

// runServeStore is a tiny introspection command: it reports how large
// each persisted store file is, without loading the full contents into
// memory, so an operator can sanity-check a store directory before a
// validation run.
func runServeStore(args []string) int {
	fs := flag.NewFlagSet("serve-store", flag.ExitOnError)
	var storeDir string
	fs.StringVar(&storeDir, "store", "./digest-store", "Store directory to inspect")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	for _, name := range []string{"registry.tsv", "annotations.duckdb", "distances.duckdb"} {
		path := filepath.Join(storeDir, name)
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			fmt.Printf("%-20s (missing)\n", name)
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: stat %s: %v\n", path, err)
			return ExitError
		}
		fmt.Printf("%-20s %10d bytes\n", name, info.Size())
	}
	return ExitSuccess
}

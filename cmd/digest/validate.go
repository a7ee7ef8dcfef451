package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/bionetslab/digest-go/internal/compare"
	"github.com/bionetslab/digest-go/internal/logging"
	"github.com/bionetslab/digest-go/internal/network"
	"github.com/bionetslab/digest-go/internal/sampler"
	"github.com/bionetslab/digest-go/internal/validate"
)

// runValidateCmd is the `digest validate` subcommand: load a store
// directory, parse a target-input request file, run validate.Driver, and
// print the resulting JSON report.
func runValidateCmd(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)

	var (
		storeDir    string
		inputFile   string
		outputFile  string
		networkFile string
		verbose     bool
		concurrency int
	)

	fs.StringVar(&storeDir, "store", "./digest-store", "Store directory (registry.tsv, annotations.duckdb, distances.duckdb)")
	fs.StringVar(&inputFile, "input", "", "Target-input request JSON file")
	fs.StringVar(&outputFile, "o", "", "Output file for the JSON report (default: stdout)")
	fs.StringVar(&networkFile, "network", "", "Entity-network edge list, required for the network_preserving sampler")
	fs.BoolVar(&verbose, "verbose", false, "Include missing-annotation counts and per-cluster partial silhouette scores")
	fs.IntVar(&concurrency, "concurrency", 0, "Max randomized runs scored concurrently (0 = unbounded)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Validate whether a gene or disease identifier set is functionally coherent.

Usage:
  digest validate [options] -input <request.json>

Supported id types: entrez, symbol, ensembl, uniprot (genes);
mondo, omim, snomedct, umls, orpha, mesh, doid, ICD-10 (diseases).
Supported request kinds: single_set, ref_set, id_ref, clustering.
Supported samplers: uniform, term_preserving, network_preserving.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  digest validate -input request.json
  digest validate -store ./digest-store -input request.json -o report.json
  digest validate -input cluster_request.json -verbose
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	if inputFile == "" {
		fmt.Fprintf(os.Stderr, "Error: -input is required\n\n")
		fs.Usage()
		return ExitUsage
	}

	log, err := logging.New(verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: creating logger: %v\n", err)
		return ExitError
	}
	defer log.Sync()

	store, err := loadStore(storeDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading store %s: %v\n", storeDir, err)
		return ExitError
	}

	req, err := loadRequest(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	samp, err := buildSampler(req, store, networkFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	engine := compare.NewEngine(store.Dist, store.Annot, store.Reg, req.Coefficient)
	driver := validate.NewDriver(engine, store.Reg)
	driver.Concurrency = concurrency
	if verbose {
		progress := logging.NewProgressReporter(log)
		driver.Progress = progress.Report
	}

	report, err := driver.Run(context.Background(), req, samp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: validation failed: %v\n", err)
		return ExitError
	}

	// The driver always computes SetSelf's missing-annotation count and
	// Clustering's per-cluster partial silhouette; the JSON report only
	// surfaces them when -verbose is set.
	if !verbose {
		report.MissingCount = nil
		report.PartialSilhouette = nil
	}

	out := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: creating output file: %v\n", err)
			return ExitError
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Fprintf(os.Stderr, "Error: writing report: %v\n", err)
		return ExitError
	}

	return ExitSuccess
}

// buildSampler constructs the background sampler a request names,
// wiring in the annotation store or entity network the strategy needs.
func buildSampler(req validate.Request, store *loadedStore, networkFile string) (sampler.Sampler, error) {
	switch req.Sampler {
	case validate.Uniform:
		return sampler.NewUniform(), nil
	case validate.TermPreserving:
		return sampler.NewTermPreserving(store.Annot), nil
	case validate.NetworkPreserving:
		if networkFile == "" {
			return nil, fmt.Errorf("network_preserving sampler requires -network")
		}
		graph, err := loadNetwork(networkFile)
		if err != nil {
			return nil, fmt.Errorf("loading entity network: %w", err)
		}
		return sampler.NewNetworkPreserving(graph), nil
	default:
		return nil, fmt.Errorf("unknown sampler kind %d", req.Sampler)
	}
}

// loadNetwork reads a two-column tab-separated edge list (entity-index
// pairs) into an in-memory adjacency list, the EntityNetwork collaborator
// the NetworkPreserving sampler walks.
func loadNetwork(path string) (*network.AdjacencyList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return network.ReadEdgeList(f)
}

// Package main provides the shelf CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "shelf",
	Short: "Deterministic PDF filing with multi-strategy metadata resolution",
	Long: `shelf extracts bibliographic metadata from PDF documents and files them
into a normalized directory scheme.

Metadata is resolved from multiple sources in fallback order:
  - structured filename patterns
  - embedded document properties and in-document text heuristics
  - external bibliographic lookups (Crossref, Semantic Scholar, Google Books)

Each filed document gets a YAML sidecar with its resolved metadata, and the
batch is recorded in a SQLite catalog under the output directory.
All commands output JSON by default for scripting.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

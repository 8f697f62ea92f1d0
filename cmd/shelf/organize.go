package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdfshelf/shelf/internal/catalog"
	"github.com/pdfshelf/shelf/internal/filing"
	"github.com/pdfshelf/shelf/internal/identity"
	"github.com/pdfshelf/shelf/internal/sidecar"
)

var (
	organizeInput   string
	organizeOutput  string
	organizeScheme  string
	organizeConfig  string
	organizeOffline bool
)

func init() {
	rootCmd.AddCommand(organizeCmd)
	organizeCmd.Flags().StringVar(&organizeInput, "input", "", "Directory containing PDFs to organize (required)")
	organizeCmd.Flags().StringVar(&organizeOutput, "output", "", "Directory where organized PDFs are placed (required)")
	organizeCmd.Flags().StringVar(&organizeScheme, "scheme", "", "Directory scheme: year or author (overrides config)")
	organizeCmd.Flags().StringVar(&organizeConfig, "config", "", "Path to a JSON config file")
	organizeCmd.Flags().BoolVar(&organizeOffline, "offline", false, "Skip external bibliographic lookups")
	organizeCmd.MarkFlagRequired("input")
	organizeCmd.MarkFlagRequired("output")
}

var organizeCmd = &cobra.Command{
	Use:   "organize",
	Short: "Resolve metadata for every PDF under a directory and file it",
	Long: `Organize walks the input directory, resolves bibliographic metadata for
each PDF, and copies it to a deterministic path under the output directory.

Re-scanned variants (report.pdf vs report-2.pdf) and byte-identical
duplicates are filed once per batch. Each success gets a YAML sidecar and a
catalog entry; failures are logged and skipped without aborting the batch.

Examples:
  shelf organize --input ~/inbox --output ~/library
  shelf organize --input ./pdfs --output ./done --scheme author --offline`,
	RunE: runOrganize,
}

// OrganizeResponse is the JSON summary of a batch run.
type OrganizeResponse struct {
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped"`
	Catalog   string `json:"catalog"`
}

func runOrganize(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(organizeInput); err != nil {
		exitWithError(ExitConfigError, "input directory not found: %s", organizeInput)
	}

	cfg := mustLoadConfig(organizeConfig)
	if organizeScheme != "" {
		cfg.Scheme = organizeScheme
	}
	scheme, err := identity.ParseScheme(cfg.Scheme)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	logger := newLogger(cfg)
	resolver := newResolver(cfg, logger, organizeOffline)
	engine := filing.New(resolver, scheme, logger)

	result, err := engine.Process(cmd.Context(), organizeInput, organizeOutput)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	catalogPath := filepath.Join(organizeOutput, catalog.FileName)
	db, err := catalog.Open(catalogPath)
	if err != nil {
		exitWithError(ExitError, "opening catalog: %v", err)
	}
	defer db.Close()

	for _, filed := range result.Filed {
		if err := sidecar.Write(filed.Destination, filed.Publication); err != nil {
			logger.Warn("sidecar write failed", "dest", filed.Destination, "error", err)
		}
		if err := db.Record(filed.Source, filed.Destination, filed.Publication); err != nil {
			logger.Warn("catalog record failed", "dest", filed.Destination, "error", err)
		}
	}

	resp := OrganizeResponse{
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Skipped:   result.Skipped,
		Catalog:   catalogPath,
	}
	if humanOutput {
		fmt.Printf("Successfully processed files: %d\n", resp.Succeeded)
		fmt.Printf("Failed files: %d\n", resp.Failed)
		fmt.Printf("Skipped duplicates: %d\n", resp.Skipped)
		return nil
	}
	return outputJSON(resp)
}

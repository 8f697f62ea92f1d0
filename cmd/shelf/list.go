package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdfshelf/shelf/internal/catalog"
)

var listOutput string

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listOutput, "output", "", "Organized output directory holding the catalog (required)")
	listCmd.MarkFlagRequired("output")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents recorded in the catalog",
	RunE:  runList,
}

// ListResponse is the JSON catalog listing.
type ListResponse struct {
	Total     int             `json:"total"`
	Documents []catalog.Entry `json:"documents"`
}

func runList(cmd *cobra.Command, args []string) error {
	catalogPath := filepath.Join(listOutput, catalog.FileName)
	if _, err := os.Stat(catalogPath); err != nil {
		exitWithError(ExitConfigError, "no catalog at %s (run 'shelf organize' first)", catalogPath)
	}

	db, err := catalog.Open(catalogPath)
	if err != nil {
		exitWithError(ExitError, "opening catalog: %v", err)
	}
	defer db.Close()

	entries, err := db.List()
	if err != nil {
		exitWithError(ExitError, "listing catalog: %v", err)
	}

	if humanOutput {
		for _, e := range entries {
			fmt.Printf("%s  %s\n", e.Publication.Year, truncateString(e.Publication.Title, 70))
			fmt.Printf("    %s\n", formatAuthors(e.Publication.Authors))
			fmt.Printf("    %s\n\n", e.DestPath)
		}
		fmt.Printf("Total: %d\n", len(entries))
		return nil
	}
	return outputJSON(ListResponse{Total: len(entries), Documents: entries})
}

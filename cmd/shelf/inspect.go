package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdfshelf/shelf/internal/identity"
	"github.com/pdfshelf/shelf/internal/pdfdoc"
	"github.com/pdfshelf/shelf/internal/publication"
	"github.com/pdfshelf/shelf/internal/resolve"
)

var (
	inspectConfig  string
	inspectOffline bool
)

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectConfig, "config", "", "Path to a JSON config file")
	inspectCmd.Flags().BoolVar(&inspectOffline, "offline", false, "Skip external bibliographic lookups")
}

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Resolve one PDF's metadata without filing it",
	Long: `Inspect runs the full resolution pipeline on a single PDF and prints the
selected candidate, its quality score, and the identity key it would file
under. Nothing is copied.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

// InspectResponse is the JSON preview of a single-document resolution.
type InspectResponse struct {
	Path        string                  `json:"path"`
	Publication publication.Publication `json:"publication"`
	Score       float64                 `json:"score"`
	Identity    identity.Key            `json:"identity"`
	Filename    string                  `json:"filename"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		exitWithError(ExitConfigError, "file not found: %s", path)
	}

	cfg := mustLoadConfig(inspectConfig)
	logger := newLogger(cfg)
	resolver := newResolver(cfg, logger, inspectOffline)

	pub, err := resolver.Resolve(cmd.Context(), pdfdoc.Document{Path: path})
	if err != nil {
		exitWithError(ExitDataError, "resolving %s: %v", path, err)
	}

	key := identity.Normalize(pub)
	resp := InspectResponse{
		Path:        path,
		Publication: pub,
		Score:       resolve.Quality(pub),
		Identity:    key,
		Filename:    identity.Filename(key),
	}
	if humanOutput {
		fmt.Printf("Title:    %s\n", pub.Title)
		fmt.Printf("Authors:  %s\n", formatAuthors(pub.Authors))
		fmt.Printf("Year:     %s\n", pub.Year)
		if pub.DOI != "" {
			fmt.Printf("DOI:      %s\n", pub.DOI)
		}
		fmt.Printf("Score:    %.2f\n", resp.Score)
		fmt.Printf("Files as: %s\n", resp.Filename)
		return nil
	}
	return outputJSON(resp)
}

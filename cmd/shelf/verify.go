package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdfshelf/shelf/internal/sidecar"
)

func init() {
	rootCmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify DIR",
	Short: "Check that every sidecar in an organized tree parses and has its PDF",
	Long: `Verify walks an organized directory and checks every YAML sidecar: it
must parse, and the PDF it describes must exist next to it. Defects are
reported per file; the command exits non-zero when any are found.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	root := args[0]
	if _, err := os.Stat(root); err != nil {
		exitWithError(ExitConfigError, "directory not found: %s", root)
	}

	report, err := sidecar.VerifyTree(root)
	if err != nil {
		exitWithError(ExitError, "verifying %s: %v", root, err)
	}

	if humanOutput {
		fmt.Printf("Checked sidecars: %d\n", report.Checked)
		for _, p := range report.Problems {
			fmt.Printf("  %s: %s\n", p.Sidecar, p.Reason)
		}
		if len(report.Problems) == 0 {
			fmt.Println("No problems found.")
		}
	} else {
		outputJSON(report)
	}

	if len(report.Problems) > 0 {
		os.Exit(ExitDataError)
	}
	return nil
}

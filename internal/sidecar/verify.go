package sidecar

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Problem describes one defect found while verifying an organized tree.
type Problem struct {
	Sidecar string `json:"sidecar"`
	Reason  string `json:"reason"`
}

// Report summarizes a verification pass.
type Report struct {
	Checked  int       `json:"checked"`
	Problems []Problem `json:"problems,omitempty"`
}

// VerifyTree walks an organized directory and checks every sidecar: it must
// parse, and its PDF twin must exist. Per-file defects are reported, not
// fatal; only an unreadable root fails the walk.
func VerifyTree(root string) (*Report, error) {
	report := &Report{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), Extension) {
			return nil
		}

		report.Checked++

		if _, err := Read(path); err != nil {
			report.Problems = append(report.Problems, Problem{Sidecar: path, Reason: err.Error()})
			return nil
		}

		pdfPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".pdf"
		if _, err := os.Stat(pdfPath); err != nil {
			report.Problems = append(report.Problems, Problem{Sidecar: path, Reason: "missing PDF: " + pdfPath})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

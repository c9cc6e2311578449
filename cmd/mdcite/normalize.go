package main

import (
	"os"

	"github.com/mdcite/mdcite/internal/history"
	"github.com/mdcite/mdcite/internal/normalize"
	"github.com/spf13/cobra"
)

var (
	normalizeDryRun bool
	normalizeWrite  bool
)

func init() {
	normalizeCmd.Flags().BoolVar(&normalizeDryRun, "dry-run", false, "Report changes without modifying anything")
	normalizeCmd.Flags().BoolVar(&normalizeWrite, "write", false, "Write the normalized document back to the file")
	rootCmd.AddCommand(normalizeCmd)
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize <file>",
	Short: "Convert legacy numeric citations to footnote style",
	Long: `Convert legacy numeric citations ([1], [2,3], [6-10]) to footnote
style ([^1]). Code blocks, math, links, images and existing footnotes
are left untouched. Without --write the normalized text is printed to
stdout; with --dry-run nothing is modified and only the report is shown.`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

// NormalizeResponse is the JSON report for the normalize command.
// NormalizedText is only populated when changes exist and were not
// written back, so callers can pick up the result without a second pass.
type NormalizeResponse struct {
	Path           string                   `json:"path"`
	ChangeCount    int                      `json:"change_count"`
	Changes        []normalize.Change       `json:"changes"`
	Skipped        []normalize.SkippedMatch `json:"skipped_regions"`
	Written        bool                     `json:"written"`
	NormalizedText string                   `json:"normalized_text,omitempty"`
}

func runNormalize(cmd *cobra.Command, args []string) error {
	path := args[0]
	text := readDocument(path)

	result := normalize.Normalize(text, normalize.Options{DryRun: normalizeDryRun})

	written := false
	if normalizeWrite && !normalizeDryRun && result.ChangeCount > 0 {
		if err := os.WriteFile(path, []byte(result.NormalizedText), 0644); err != nil {
			exitWithError(ExitDataError, "writing %s: %v", path, err)
		}
		written = true
	}

	resp := NormalizeResponse{
		Path:        path,
		ChangeCount: result.ChangeCount,
		Changes:     result.Changes,
		Skipped:     result.SkippedRegions,
		Written:     written,
	}
	if !written && !normalizeDryRun && result.ChangeCount > 0 {
		resp.NormalizedText = result.NormalizedText
	}
	if resp.Changes == nil {
		resp.Changes = []normalize.Change{}
	}
	if resp.Skipped == nil {
		resp.Skipped = []normalize.SkippedMatch{}
	}

	report := resp
	report.NormalizedText = "" // keep history rows small
	recordScan(history.Entry{
		Path:       path,
		Operation:  "normalize",
		Changes:    result.ChangeCount,
		ReportJSON: marshalReport(report),
	})

	if humanOutput {
		if result.ChangeCount == 0 {
			outputHuman("No legacy citations found in %s\n", path)
		} else {
			outputHuman("%d citations normalized in %s\n\n", result.ChangeCount, path)
			for _, c := range result.Changes {
				outputHuman("  line %d: %s -> %s\n", c.Line, c.Original, c.Replacement)
			}
			for _, s := range result.SkippedRegions {
				outputHuman("  line %d: skipped %s (%s)\n", s.Line, truncateString(s.Text, SnippetMaxLen), s.Reason)
			}
			if normalizeDryRun {
				outputHuman("\nDry run: nothing written\n")
			} else if written {
				outputHuman("\nWritten to %s\n", path)
			}
		}
		return nil
	}

	return outputJSON(resp)
}

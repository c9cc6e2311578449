package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mdcite/mdcite/internal/config"
	"github.com/mdcite/mdcite/internal/history"
)

// Constants for output formatting.
const (
	DefaultHistoryLimit = 20 // Default limit for the history command

	SnippetMaxLen  = 70 // Flagged-line snippets in human output
	CitationMaxLen = 80 // Citation text in human verify output
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// truncateString truncates a string to maxLen runes, adding "..." if
// truncated. Counting runes keeps multi-byte characters intact.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// recordScan logs a run to the scan-history database. History is best
// effort; a broken cache directory must never fail the command itself.
func recordScan(e history.Entry) {
	path := config.HistoryPath()
	if path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "warning: scan history unavailable: %v\n", err)
		return
	}

	db, err := history.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: scan history unavailable: %v\n", err)
		return
	}
	defer db.Close()

	if _, err := db.Record(e); err != nil {
		fmt.Fprintf(os.Stderr, "warning: recording scan: %v\n", err)
	}
}

// marshalReport renders a report for the history row; empty on failure.
func marshalReport(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

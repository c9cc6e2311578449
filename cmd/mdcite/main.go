// Package main provides the mdcite CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mdcite",
	Short: "Citation integrity for markdown documents",
	Long: `mdcite keeps markdown citations honest.

It converts legacy numeric citations ([1], [2,3], [6-10]) to footnote
style ([^1]), checks that every inline citation has a definition and
vice versa, and verifies that citations appear in contexts that match
what they cite. All commands output JSON by default for easy
integration with editors and other tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// readDocument reads the markdown file for a command, exiting on failure.
func readDocument(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", path, err)
	}
	return string(data)
}

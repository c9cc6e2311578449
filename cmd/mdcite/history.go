package main

import (
	"os"
	"time"

	"github.com/mdcite/mdcite/internal/config"
	"github.com/mdcite/mdcite/internal/history"
	"github.com/spf13/cobra"
)

var (
	historyPath  string
	historyLimit int
)

func init() {
	historyCmd.Flags().StringVar(&historyPath, "path", "", "Only show runs for this document")
	historyCmd.Flags().IntVar(&historyLimit, "limit", DefaultHistoryLimit, "Maximum number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent scan runs",
	Long:  `Show recent normalize/check/verify runs recorded in the scan history.`,
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

// HistoryResponse is the JSON report for the history command.
type HistoryResponse struct {
	Runs []history.Entry `json:"runs"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	dbPath := config.HistoryPath()
	if dbPath == "" {
		exitWithError(ExitConfigError, "cannot resolve history path")
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		// No runs recorded yet.
		if humanOutput {
			outputHuman("No scan history\n")
			return nil
		}
		return outputJSON(HistoryResponse{Runs: []history.Entry{}})
	}

	db, err := history.Open(dbPath)
	if err != nil {
		exitWithError(ExitDataError, "opening history: %v", err)
	}
	defer db.Close()

	var runs []history.Entry
	if historyPath != "" {
		runs, err = db.ForPath(historyPath, historyLimit)
	} else {
		runs, err = db.Recent(historyLimit)
	}
	if err != nil {
		exitWithError(ExitDataError, "reading history: %v", err)
	}
	if runs == nil {
		runs = []history.Entry{}
	}

	if humanOutput {
		if len(runs) == 0 {
			outputHuman("No scan history\n")
			return nil
		}
		for _, r := range runs {
			outputHuman("%s  %-9s %s\n", r.RunAt.Format(time.DateTime), r.Operation, r.Path)
			switch r.Operation {
			case "normalize":
				outputHuman("    %d changes\n", r.Changes)
			case "check":
				outputHuman("    %d duplicates, %d orphaned, %d missing\n",
					r.Duplicates, r.Orphans, r.Missing)
			case "verify":
				outputHuman("    %d flagged\n", r.Mismatches)
			}
		}
		return nil
	}
	return outputJSON(HistoryResponse{Runs: runs})
}

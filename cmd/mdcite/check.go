package main

import (
	"os"

	"github.com/mdcite/mdcite/internal/history"
	"github.com/mdcite/mdcite/internal/integrity"
	"github.com/spf13/cobra"
)

var checkFixDuplicates bool

func init() {
	checkCmd.Flags().BoolVar(&checkFixDuplicates, "fix-duplicates", false, "Collapse adjacent same-citation duplicates and write the file back")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Verify citation integrity",
	Long: `Verify citation integrity: adjacent duplicate citations, orphaned
definitions with no inline use, and inline citations with no definition.
Exits with code 4 when issues are found.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

// CheckResponse is the JSON report for the check command.
type CheckResponse struct {
	Path            string                `json:"path"`
	Status          string                `json:"status"`
	InlineCount     int                   `json:"inline_count"`
	DefinitionCount int                   `json:"definition_count"`
	Duplicates      []integrity.Duplicate `json:"same_citation_duplicates"`
	Orphaned        []string              `json:"orphaned_definitions"`
	Missing         []string              `json:"missing_definitions"`
	DuplicatesFixed int                   `json:"duplicates_fixed,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]
	text := readDocument(path)

	fixed := 0
	if checkFixDuplicates {
		collapsed, n := integrity.FixDuplicates(text)
		if n > 0 {
			if err := os.WriteFile(path, []byte(collapsed), 0644); err != nil {
				exitWithError(ExitDataError, "writing %s: %v", path, err)
			}
			text = collapsed
			fixed = n
		}
	}

	report := integrity.Analyze(text)

	status := "ok"
	if !report.IsClean {
		status = "issues"
	}

	resp := CheckResponse{
		Path:            path,
		Status:          status,
		InlineCount:     report.InlineCount,
		DefinitionCount: report.DefinitionCount,
		Duplicates:      report.SameCitationDuplicates,
		Orphaned:        report.OrphanedDefinitions,
		Missing:         report.MissingDefinitions,
		DuplicatesFixed: fixed,
	}
	if resp.Duplicates == nil {
		resp.Duplicates = []integrity.Duplicate{}
	}
	if resp.Orphaned == nil {
		resp.Orphaned = []string{}
	}
	if resp.Missing == nil {
		resp.Missing = []string{}
	}

	recordScan(history.Entry{
		Path:       path,
		Operation:  "check",
		Changes:    fixed,
		Duplicates: len(report.SameCitationDuplicates),
		Orphans:    len(report.OrphanedDefinitions),
		Missing:    len(report.MissingDefinitions),
		ReportJSON: marshalReport(resp),
	})

	if humanOutput {
		if report.IsClean {
			outputHuman("Citation check: OK\n\n%d inline citations, %d definitions\n",
				report.InlineCount, report.DefinitionCount)
		} else {
			outputHuman("Citation check: issues found\n\n")
			for _, d := range report.SameCitationDuplicates {
				outputHuman("  [WARN] line %d: duplicate citation run\n", d.Line)
				outputHuman("         %s\n\n", truncateString(d.Original, SnippetMaxLen))
			}
			for _, tag := range report.OrphanedDefinitions {
				outputHuman("  [WARN] orphaned definition [^%s] (never cited)\n", tag)
			}
			for _, tag := range report.MissingDefinitions {
				outputHuman("  [WARN] missing definition [^%s] (cited but undefined)\n", tag)
			}
			outputHuman("\n%d inline citations, %d definitions\n",
				report.InlineCount, report.DefinitionCount)
		}
		if fixed > 0 {
			outputHuman("%d duplicate runs collapsed and written to %s\n", fixed, path)
		}
	} else {
		if err := outputJSON(resp); err != nil {
			return err
		}
	}

	if !report.IsClean {
		os.Exit(ExitIssuesFound)
	}
	return nil
}

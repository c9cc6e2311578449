// Package integrity checks the pairing between inline citation markers and
// their definitions across a whole document.
package integrity

import (
	"regexp"
	"sort"
	"strings"

	"github.com/mdcite/mdcite/internal/document"
)

// Duplicate is one fixable run of consecutive identical citation tags.
type Duplicate struct {
	Line     int    `json:"line"`
	Original string `json:"original_text"`
	Fixed    string `json:"fixed_text"`
}

// Report is the outcome of an integrity analysis. It is derived from a single
// document snapshot and never persisted by this package.
type Report struct {
	SameCitationDuplicates []Duplicate `json:"same_citation_duplicates"`
	OrphanedDefinitions    []string    `json:"orphaned_definitions"`
	MissingDefinitions     []string    `json:"missing_definitions"`
	InlineCount            int         `json:"inline_count"`
	DefinitionCount        int         `json:"definition_count"`
	IsClean                bool        `json:"is_clean"`
}

// tagPattern matches a canonical footnote marker, in bare form or with the
// escaped brackets table cells carry. The capture is the tag content alone,
// so `\[^5\]` and `[^5]` extract the same tag.
var tagPattern = regexp.MustCompile(`\\?\[\^([^\]\\]+)\\?\]`)

// Analyze builds the inline and definition tag sets, computes orphaned and
// missing definitions by set difference, and records every consecutive
// identical-tag duplicate in the body. Structural anomalies are reported as
// data, never as errors.
func Analyze(text string) Report {
	lines := document.Split(text)
	sec := document.FindReferenceSection(lines)

	inline := document.InlineReferences(lines, sec)
	defs := document.Definitions(lines)

	inlineSet := make(map[string]bool, len(inline))
	for _, r := range inline {
		inlineSet[r.Tag] = true
	}
	defSet := make(map[string]bool, len(defs))
	for _, d := range defs {
		defSet[d.Tag] = true
	}

	report := Report{
		SameCitationDuplicates: []Duplicate{},
		OrphanedDefinitions:    setDifference(defSet, inlineSet),
		MissingDefinitions:     setDifference(inlineSet, defSet),
		InlineCount:            len(inline),
		DefinitionCount:        len(defs),
	}

	for _, l := range lines {
		if sec.Contains(l.Number) || document.IsDefinitionLine(l.Text) {
			continue
		}
		for _, run := range duplicateRuns(l.Text) {
			report.SameCitationDuplicates = append(report.SameCitationDuplicates, Duplicate{
				Line:     l.Number,
				Original: l.Text[run.start:run.end],
				Fixed:    run.tag,
			})
		}
	}

	report.IsClean = len(report.SameCitationDuplicates) == 0 &&
		len(report.OrphanedDefinitions) == 0 &&
		len(report.MissingDefinitions) == 0

	return report
}

// FixDuplicates collapses every consecutive identical-tag run in the body to
// a single tag and returns the fixed text with the number of individual
// duplicate-pair collapses. A run of length k contributes k-1 fixes. The
// reference section is never touched. Applying FixDuplicates to its own
// output performs zero fixes.
func FixDuplicates(text string) (string, int) {
	lines := document.Split(text)
	sec := document.FindReferenceSection(lines)

	total := 0
	for i := range lines {
		if sec.Contains(lines[i].Number) || document.IsDefinitionLine(lines[i].Text) {
			continue
		}
		// A single pass per line reaches the fixed point because each
		// run collapses wholesale, but iterate anyway in case a
		// collapse makes two runs adjacent.
		for {
			fixed, n := collapseRuns(lines[i].Text)
			total += n
			lines[i].Text = fixed
			if n == 0 {
				break
			}
		}
	}

	return document.Join(lines), total
}

// run is one maximal stretch of consecutive identical tags, possibly
// whitespace-separated, as byte offsets into its line.
type run struct {
	start, end int
	tag        string // the single surviving tag text, e.g. "[^A]"
	count      int
}

// duplicateRuns finds all maximal runs of length >= 2 in one line.
func duplicateRuns(line string) []run {
	matches := tagPattern.FindAllStringSubmatchIndex(line, -1)
	var runs []run

	i := 0
	for i < len(matches) {
		j := i
		for j+1 < len(matches) &&
			tagAt(line, matches[j+1]) == tagAt(line, matches[i]) &&
			strings.TrimSpace(line[matches[j][1]:matches[j+1][0]]) == "" {
			j++
		}
		if j > i {
			runs = append(runs, run{
				start: matches[i][0],
				end:   matches[j][1],
				tag:   line[matches[i][0]:matches[i][1]],
				count: j - i + 1,
			})
		}
		i = j + 1
	}
	return runs
}

// collapseRuns rewrites each duplicate run in a line to its single tag and
// returns the number of pair collapses performed.
func collapseRuns(line string) (string, int) {
	runs := duplicateRuns(line)
	if len(runs) == 0 {
		return line, 0
	}

	var b strings.Builder
	prev := 0
	fixes := 0
	for _, r := range runs {
		b.WriteString(line[prev:r.start])
		b.WriteString(r.tag)
		prev = r.end
		fixes += r.count - 1
	}
	b.WriteString(line[prev:])
	return b.String(), fixes
}

// tagAt returns the captured tag content for a FindAllStringSubmatchIndex match.
func tagAt(line string, m []int) string {
	return line[m[2]:m[3]]
}

// setDifference returns the sorted elements of a not present in b.
func setDifference(a, b map[string]bool) []string {
	diff := []string{}
	for tag := range a {
		if !b[tag] {
			diff = append(diff, tag)
		}
	}
	sort.Strings(diff)
	return diff
}

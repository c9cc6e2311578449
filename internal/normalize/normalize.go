// Package normalize rewrites legacy bracket-numeric citations into canonical
// footnote tags without touching look-alike brackets or excluded regions.
package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mdcite/mdcite/internal/document"
	"github.com/mdcite/mdcite/internal/protect"
	"github.com/mdcite/mdcite/internal/region"
)

// Options configures a normalization pass.
type Options struct {
	// DryRun computes the change log without rewriting the returned text.
	DryRun bool
}

// Change records one rewritten citation expression.
type Change struct {
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
	Line        int    `json:"line"`
	Kind        Kind   `json:"kind"`
}

// SkippedMatch records a citation-shaped match left alone because it overlaps
// an excluded region.
type SkippedMatch struct {
	Line   int           `json:"line"`
	Text   string        `json:"text"`
	Reason region.Reason `json:"reason"`
}

// Result is the outcome of a normalization pass.
type Result struct {
	NormalizedText string         `json:"normalized_text"`
	ChangeCount    int            `json:"change_count"`
	Changes        []Change       `json:"changes"`
	SkippedRegions []SkippedMatch `json:"skipped_regions"`
}

// tableRowPattern recognizes markdown table rows, whose cells need escaped
// brackets to render.
var tableRowPattern = regexp.MustCompile(`^\s*\|`)

// Normalize rewrites every valid legacy citation in text to canonical footnote
// tags. Non-citation brackets are protected first and restored verbatim at the
// end; spans overlapping code, math, or frontmatter are never rewritten.
// Running Normalize on its own output yields zero changes.
func Normalize(text string, opts Options) Result {
	protector := protect.New()
	protected := protector.Protect(text)

	// Regions and citation spans are both measured against the protected
	// text, so every overlap test happens in one coordinate space.
	regions := region.Detect(protected)
	lines := document.Split(protected)

	result := Result{
		Changes:        []Change{},
		SkippedRegions: []SkippedMatch{},
	}

	for i := range lines {
		rewritten := normalizeLine(lines[i], regions, &result)
		if !opts.DryRun {
			lines[i].Text = rewritten
		}
	}

	if opts.DryRun {
		result.NormalizedText = text
	} else {
		result.NormalizedText = protector.Restore(document.Join(lines))
	}
	result.ChangeCount = len(result.Changes)
	return result
}

// normalizeLine rewrites one line, appending changes and skips to result.
func normalizeLine(line document.Line, regions []region.Region, result *Result) string {
	// Footnote definition lines are never rewritten.
	if document.IsDefinitionLine(line.Text) {
		return line.Text
	}

	matches := legacyPattern.FindAllStringIndex(line.Text, -1)
	if matches == nil {
		return line.Text
	}

	isTableRow := tableRowPattern.MatchString(line.Text)

	var b strings.Builder
	prev := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		matched := line.Text[start:end]

		absStart := line.Start + start
		absEnd := line.Start + end
		if r := region.Covering(regions, absStart, absEnd); r != nil {
			result.SkippedRegions = append(result.SkippedRegions, SkippedMatch{
				Line:   line.Number,
				Text:   matched,
				Reason: r.Reason,
			})
			continue
		}

		if !neighborsAllowRewrite(line.Text, start, end) {
			continue
		}

		values, kind, ok := parseExpression(strings.Trim(matched, "[]"))
		if !ok {
			continue
		}

		b.WriteString(line.Text[prev:start])
		b.WriteString(renderTags(values, isTableRow))
		prev = end

		result.Changes = append(result.Changes, Change{
			Original:    matched,
			Replacement: renderTags(values, isTableRow),
			Line:        line.Number,
			Kind:        kind,
		})
	}

	if prev == 0 {
		return line.Text
	}
	b.WriteString(line.Text[prev:])
	return b.String()
}

// neighborsAllowRewrite applies the surrounding-character rejection rules: a
// bracket that is part of a larger construct which survived protection only
// partially must be left alone.
func neighborsAllowRewrite(line string, start, end int) bool {
	if start > 0 {
		switch line[start-1] {
		case '!', '[':
			return false
		}
	}
	if end < len(line) {
		switch line[end] {
		case '(':
			return false
		case '[':
			// Another bracket citation may follow directly; anything
			// else is a wikilink continuation.
			if end+1 >= len(line) {
				return false
			}
			next := line[end+1]
			if next != '^' && (next < '0' || next > '9') {
				return false
			}
		}
	}
	return true
}

// renderTags emits one canonical tag per value, space-joined. Table rows get
// escaped brackets so the cell still renders.
func renderTags(values []int, tableRow bool) string {
	tags := make([]string, len(values))
	for i, v := range values {
		if tableRow {
			tags[i] = fmt.Sprintf(`\[^%d\]`, v)
		} else {
			tags[i] = fmt.Sprintf("[^%d]", v)
		}
	}
	return strings.Join(tags, " ")
}

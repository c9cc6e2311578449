// Package region detects document spans that citation rewriting must never touch.
package region

import (
	"regexp"
	"sort"
)

// Reason identifies why a span is excluded from rewriting.
type Reason string

// Exclusion reasons.
const (
	YAMLFrontmatter Reason = "yaml_frontmatter"
	CodeBlock       Reason = "code_block"
	InlineCode      Reason = "inline_code"
	MathBlock       Reason = "math_block"
	InlineMath      Reason = "inline_math"
)

// Region is a half-open [Start, End) byte span of the document.
type Region struct {
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Reason Reason `json:"reason"`
}

// Overlaps reports whether the half-open span [start, end) intersects the region.
func (r Region) Overlaps(start, end int) bool {
	return start < r.End && end > r.Start
}

var (
	// frontmatterPattern matches a single YAML block at the very start of the document.
	frontmatterPattern = regexp.MustCompile(`(?s)\A---\r?\n.*?\r?\n---(?:\r?\n|\z)`)

	// codeBlockPattern matches fenced code blocks, non-greedily across lines.
	codeBlockPattern = regexp.MustCompile("(?s)```.*?```")

	// inlineCodePattern matches single-backtick code spans on one line.
	inlineCodePattern = regexp.MustCompile("`[^`\n]+`")

	// mathBlockPattern matches $$ ... $$ display math, non-greedily across lines.
	mathBlockPattern = regexp.MustCompile(`(?s)\$\$.*?\$\$`)

	// inlineMathPattern matches $ ... $ spans without an embedded newline.
	inlineMathPattern = regexp.MustCompile(`\$[^$\n]+\$`)
)

// Detect scans text once and returns all excluded regions sorted by start
// offset. It is a pure function of its input; regions from different kinds may
// overlap each other, which is harmless because callers only test span
// coverage, never region identity.
func Detect(text string) []Region {
	var regions []Region

	add := func(re *regexp.Regexp, reason Reason) {
		for _, m := range re.FindAllStringIndex(text, -1) {
			regions = append(regions, Region{Start: m[0], End: m[1], Reason: reason})
		}
	}

	if m := frontmatterPattern.FindStringIndex(text); m != nil {
		regions = append(regions, Region{Start: m[0], End: m[1], Reason: YAMLFrontmatter})
	}
	add(codeBlockPattern, CodeBlock)
	add(inlineCodePattern, InlineCode)
	add(mathBlockPattern, MathBlock)
	add(inlineMathPattern, InlineMath)

	sort.Slice(regions, func(i, j int) bool {
		if regions[i].Start != regions[j].Start {
			return regions[i].Start < regions[j].Start
		}
		return regions[i].End < regions[j].End
	})

	return regions
}

// Covering returns the first region that intersects [start, end), or nil.
func Covering(regions []Region, start, end int) *Region {
	for i := range regions {
		if regions[i].Overlaps(start, end) {
			return &regions[i]
		}
	}
	return nil
}

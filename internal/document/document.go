// Package document provides the shared textual model for citation analysis:
// a stable line/offset view of a markdown document, the reference-section
// boundary, footnote definitions, and inline citation references.
package document

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mdcite/mdcite/internal/region"
)

// Line is one newline-delimited line of a document. Number is 1-based and
// stable across all operations; Start is the line's byte offset in the
// original text.
type Line struct {
	Number int
	Start  int
	Text   string
}

// Split breaks text into lines, preserving byte offsets. A trailing newline
// yields a final empty line, so Join(Split(text)) reproduces text exactly.
func Split(text string) []Line {
	raw := strings.Split(text, "\n")
	lines := make([]Line, len(raw))
	offset := 0
	for i, s := range raw {
		lines[i] = Line{Number: i + 1, Start: offset, Text: s}
		offset += len(s) + 1
	}
	return lines
}

// Join reassembles lines into document text.
func Join(lines []Line) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.Text
	}
	return strings.Join(parts, "\n")
}

var (
	// referenceHeadingPattern matches a level 1-3 heading opening a
	// reference section.
	referenceHeadingPattern = regexp.MustCompile(`(?i)^(#{1,3})\s*(References|Bibliography|Citations|Works Cited|Sources|Endnotes)\s*$`)

	// headingPattern matches any markdown ATX heading.
	headingPattern = regexp.MustCompile(`^(#{1,6})\s`)

	// definitionPattern matches a footnote definition line and captures the
	// tag and the first line of the citation text.
	definitionPattern = regexp.MustCompile(`^\[\^([^\]]+)\]:\s*(.*)$`)

	// tagPattern matches a canonical footnote marker and captures the tag.
	// Table cells carry escaped brackets, so `\[^5\]` and `[^5]` both
	// extract tag "5".
	tagPattern = regexp.MustCompile(`\\?\[\^([^\]\\]+)\\?\]`)
)

// Section is the reference-section boundary, expressed in 1-based line
// numbers. The section spans lines [StartLine, EndLine]; Found is false when
// the document has no reference heading, in which case the whole document is
// body.
type Section struct {
	Found     bool
	StartLine int
	EndLine   int
	Level     int
}

// Contains reports whether the 1-based line number falls inside the section.
func (s Section) Contains(lineNumber int) bool {
	return s.Found && lineNumber >= s.StartLine && lineNumber <= s.EndLine
}

// FindReferenceSection locates the first reference heading and the extent of
// its section: from the heading to the next heading of the same or shallower
// level, or end of document.
func FindReferenceSection(lines []Line) Section {
	for i, l := range lines {
		m := referenceHeadingPattern.FindStringSubmatch(l.Text)
		if m == nil {
			continue
		}
		sec := Section{Found: true, StartLine: l.Number, EndLine: lines[len(lines)-1].Number, Level: len(m[1])}
		for _, after := range lines[i+1:] {
			h := headingPattern.FindStringSubmatch(after.Text)
			if h != nil && len(h[1]) <= sec.Level {
				sec.EndLine = after.Number - 1
				break
			}
		}
		return sec
	}
	return Section{}
}

// Definition is a footnote definition: the tag, the 1-based line of the
// definition line, and the full citation text (the definition line plus any
// continuation lines up to the next definition, a blank line, or the section
// end).
type Definition struct {
	Tag  string
	Line int
	Text string
}

// IsDefinitionLine reports whether s is a footnote definition line.
func IsDefinitionLine(s string) bool {
	return definitionPattern.MatchString(s)
}

// Definitions extracts footnote definitions from anywhere in the document.
// Most live in the reference section, but a definition without a heading above
// it is still a definition; documents with no reference heading at all keep
// their footnotes this way.
func Definitions(lines []Line) []Definition {
	var defs []Definition
	for i := 0; i < len(lines); i++ {
		l := lines[i]
		m := definitionPattern.FindStringSubmatch(l.Text)
		if m == nil {
			continue
		}
		text := m[2]
		for j := i + 1; j < len(lines); j++ {
			next := lines[j]
			if strings.TrimSpace(next.Text) == "" || IsDefinitionLine(next.Text) || headingPattern.MatchString(next.Text) {
				break
			}
			text += " " + strings.TrimSpace(next.Text)
		}
		defs = append(defs, Definition{Tag: m[1], Line: l.Number, Text: strings.TrimSpace(text)})
	}
	return defs
}

// InlineRef is one inline citation marker in the document body.
type InlineRef struct {
	Tag  string
	Line int
}

// InlineReferences extracts every canonical citation marker used in the body,
// in document order. Lines inside the reference section are opaque, and a
// stray definition line outside it is a definition, not a use.
func InlineReferences(lines []Line, sec Section) []InlineRef {
	var refs []InlineRef
	for _, l := range lines {
		if sec.Contains(l.Number) || IsDefinitionLine(l.Text) {
			continue
		}
		for _, m := range tagPattern.FindAllStringSubmatch(l.Text, -1) {
			refs = append(refs, InlineRef{Tag: m[1], Line: l.Number})
		}
	}
	return refs
}

// Metadata is the YAML frontmatter fields the tool cares about.
type Metadata struct {
	Title string   `yaml:"title"`
	Date  string   `yaml:"date"`
	Tags  []string `yaml:"tags"`
}

// Frontmatter parses the document's YAML frontmatter, if any. A frontmatter
// block that is not valid YAML is treated as absent, not as an error: content
// issues are data, never fatal.
func Frontmatter(text string) (Metadata, bool) {
	for _, r := range region.Detect(text) {
		if r.Reason != region.YAMLFrontmatter {
			continue
		}
		block := text[r.Start:r.End]
		block = strings.TrimPrefix(block, "---")
		if idx := strings.LastIndex(block, "---"); idx >= 0 {
			block = block[:idx]
		}
		var meta Metadata
		if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
			return Metadata{}, false
		}
		return meta, true
	}
	return Metadata{}, false
}

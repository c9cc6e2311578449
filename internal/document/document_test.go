package document

import (
	"strings"
	"testing"
)

const sampleDoc = `---
title: Curcumin Review
tags:
  - nutrition
---
# Introduction

Curcumin shows effects.[^1] More text.[^2]

## Methods

We searched databases.[^1]

## References

[^1]: Smith J. Curcumin bioavailability. J Nutr. 2020.
[^2]: Jones K. Turmeric compounds. Phytother Res. 2019.
    Extended note on the second line.
[^3]: Unused reference here with enough text.

## Appendix

Extra material.[^4]`

func TestSplitOffsets(t *testing.T) {
	text := "abc\ndef\n\nghi"
	lines := Split(text)

	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}
	for _, l := range lines {
		end := l.Start + len(l.Text)
		if text[l.Start:end] != l.Text {
			t.Errorf("line %d: offset %d does not recover %q", l.Number, l.Start, l.Text)
		}
	}
	if lines[2].Number != 3 {
		t.Errorf("line numbers must be 1-based, got %d", lines[2].Number)
	}
	if got := Join(lines); got != text {
		t.Errorf("Join(Split(text)) = %q, want %q", got, text)
	}
}

func TestSplitTrailingNewline(t *testing.T) {
	lines := Split("a\n")
	if len(lines) != 2 || lines[1].Text != "" {
		t.Errorf("Split(\"a\\n\") = %+v, want a final empty line", lines)
	}
	if got := Join(lines); got != "a\n" {
		t.Errorf("Join round trip = %q, want %q", got, "a\n")
	}
}

func TestFindReferenceSection(t *testing.T) {
	lines := Split(sampleDoc)
	sec := FindReferenceSection(lines)

	if !sec.Found {
		t.Fatal("reference section not found")
	}
	if lines[sec.StartLine-1].Text != "## References" {
		t.Errorf("section starts at %q", lines[sec.StartLine-1].Text)
	}
	// Section must end before the same-level "## Appendix" heading.
	if lines[sec.EndLine].Text != "## Appendix" {
		t.Errorf("section ends at line %d (%q), want the line before ## Appendix",
			sec.EndLine, lines[sec.EndLine-1].Text)
	}
}

func TestFindReferenceSectionVariants(t *testing.T) {
	tests := []struct {
		heading string
		found   bool
	}{
		{"# References", true},
		{"## Bibliography", true},
		{"### works cited", true},
		{"## Endnotes", true},
		{"#### References", false}, // level 4 is too deep
		{"## Referenced Works", false},
	}

	for _, tt := range tests {
		lines := Split("Body.\n\n" + tt.heading + "\n\n[^1]: Ref.")
		sec := FindReferenceSection(lines)
		if sec.Found != tt.found {
			t.Errorf("%q: found = %v, want %v", tt.heading, sec.Found, tt.found)
		}
	}
}

func TestDefinitions(t *testing.T) {
	lines := Split(sampleDoc)
	defs := Definitions(lines)

	if len(defs) != 3 {
		t.Fatalf("got %d definitions, want 3: %+v", len(defs), defs)
	}
	if defs[0].Tag != "1" || defs[1].Tag != "2" || defs[2].Tag != "3" {
		t.Errorf("tags = %s, %s, %s", defs[0].Tag, defs[1].Tag, defs[2].Tag)
	}
	if !strings.Contains(defs[1].Text, "Extended note") {
		t.Errorf("continuation line not folded into definition text: %q", defs[1].Text)
	}
	if strings.Contains(defs[0].Text, "[^1]") {
		t.Errorf("definition text should not include its own marker: %q", defs[0].Text)
	}
}

func TestDefinitionsWithoutReferenceHeading(t *testing.T) {
	doc := "Claim.[^1]\n\n[^1]: Smith J. A paper. 2021."
	defs := Definitions(Split(doc))

	if len(defs) != 1 || defs[0].Tag != "1" {
		t.Fatalf("got %+v, want the single footnote definition", defs)
	}
}

func TestInlineReferences(t *testing.T) {
	lines := Split(sampleDoc)
	sec := FindReferenceSection(lines)
	refs := InlineReferences(lines, sec)

	var tags []string
	for _, r := range refs {
		tags = append(tags, r.Tag)
	}
	want := []string{"1", "2", "1", "4"}
	if strings.Join(tags, ",") != strings.Join(want, ",") {
		t.Errorf("inline tags = %v, want %v", tags, want)
	}
}

func TestInlineReferencesTableEscapedTags(t *testing.T) {
	lines := Split(`Text.[^1] and a table cell | \[^2\] | here.`)
	refs := InlineReferences(lines, Section{})

	if len(refs) != 2 || refs[0].Tag != "1" || refs[1].Tag != "2" {
		t.Errorf("refs = %+v, want tags 1 and 2 without escape characters", refs)
	}
}

func TestInlineReferencesIgnoreReferenceSection(t *testing.T) {
	// A definition quoting its own tag must not count as inline use.
	doc := "Body.[^A]\n\n## References\n\n[^A]: See [^A] above for context."
	lines := Split(doc)
	sec := FindReferenceSection(lines)
	refs := InlineReferences(lines, sec)

	if len(refs) != 1 || refs[0].Line != 1 {
		t.Errorf("got %+v, want exactly the line-1 use", refs)
	}
}

func TestFrontmatter(t *testing.T) {
	meta, ok := Frontmatter(sampleDoc)
	if !ok {
		t.Fatal("frontmatter not detected")
	}
	if meta.Title != "Curcumin Review" {
		t.Errorf("title = %q", meta.Title)
	}
	if len(meta.Tags) != 1 || meta.Tags[0] != "nutrition" {
		t.Errorf("tags = %v", meta.Tags)
	}

	if _, ok := Frontmatter("No frontmatter here."); ok {
		t.Error("detected frontmatter in a plain document")
	}
}

package integrity

import (
	"reflect"
	"strings"
	"testing"

	"github.com/mdcite/mdcite/internal/normalize"
)

func TestAnalyzeDuplicateScenario(t *testing.T) {
	report := Analyze("Test.[^A][^A]\n\n## References\n\n[^A]: Ref.")

	if len(report.SameCitationDuplicates) != 1 {
		t.Fatalf("got %d duplicates, want 1: %+v",
			len(report.SameCitationDuplicates), report.SameCitationDuplicates)
	}
	d := report.SameCitationDuplicates[0]
	if d.Line != 1 {
		t.Errorf("duplicate line = %d, want 1", d.Line)
	}
	if d.Original != "[^A][^A]" || d.Fixed != "[^A]" {
		t.Errorf("duplicate = %q -> %q, want %q -> %q", d.Original, d.Fixed, "[^A][^A]", "[^A]")
	}
	if report.IsClean {
		t.Error("IsClean = true with a duplicate present")
	}
	if len(report.OrphanedDefinitions) != 0 || len(report.MissingDefinitions) != 0 {
		t.Errorf("orphaned = %v, missing = %v, want both empty",
			report.OrphanedDefinitions, report.MissingDefinitions)
	}
}

func TestAnalyzeSetLaw(t *testing.T) {
	doc := strings.Join([]string{
		"Used and defined.[^1] Used, undefined.[^ghost]",
		"",
		"## References",
		"",
		"[^1]: Defined and used.",
		"[^orphan]: Defined, never used.",
	}, "\n")

	report := Analyze(doc)

	if !reflect.DeepEqual(report.OrphanedDefinitions, []string{"orphan"}) {
		t.Errorf("orphaned = %v, want [orphan]", report.OrphanedDefinitions)
	}
	if !reflect.DeepEqual(report.MissingDefinitions, []string{"ghost"}) {
		t.Errorf("missing = %v, want [ghost]", report.MissingDefinitions)
	}
	if report.IsClean {
		t.Error("IsClean = true with orphans and missing definitions")
	}
}

func TestAnalyzeClean(t *testing.T) {
	doc := "A claim.[^1]\n\n## References\n\n[^1]: The source."
	report := Analyze(doc)

	if !report.IsClean {
		t.Errorf("IsClean = false on a clean document: %+v", report)
	}
	if report.InlineCount != 1 || report.DefinitionCount != 1 {
		t.Errorf("counts = %d/%d, want 1/1", report.InlineCount, report.DefinitionCount)
	}
}

func TestAnalyzeReferenceSectionOpaque(t *testing.T) {
	// A definition that quotes its own tag twice must not register as an
	// inline duplicate.
	doc := "Body.[^A]\n\n## References\n\n[^A]: Compare [^A] [^A] in the original."
	report := Analyze(doc)

	if len(report.SameCitationDuplicates) != 0 {
		t.Errorf("duplicates inside the reference section reported: %+v",
			report.SameCitationDuplicates)
	}
}

func TestAnalyzeWhitespaceSeparatedDuplicates(t *testing.T) {
	report := Analyze("Fact.[^2] [^2] More.")

	if len(report.SameCitationDuplicates) != 1 {
		t.Fatalf("got %d duplicates, want 1", len(report.SameCitationDuplicates))
	}
	if report.SameCitationDuplicates[0].Original != "[^2] [^2]" {
		t.Errorf("original = %q", report.SameCitationDuplicates[0].Original)
	}
}

func TestAnalyzeDuplicatesAcrossLinesNotCollapsed(t *testing.T) {
	// Runs never span line breaks: collapsing them would alter line
	// structure, which no check or fix operation is allowed to do.
	doc := "Fact.[^A]\n[^A]\n\n## References\n\n[^A]: Ref."
	report := Analyze(doc)

	if len(report.SameCitationDuplicates) != 0 {
		t.Errorf("cross-line tags reported as a duplicate run: %+v",
			report.SameCitationDuplicates)
	}

	fixed, n := FixDuplicates(doc)
	if n != 0 || fixed != doc {
		t.Errorf("cross-line tags collapsed: %d fixes, %q", n, fixed)
	}
}

func TestAnalyzeDistinctTagsNotDuplicates(t *testing.T) {
	doc := "Fine.[^1][^2]\n\n## References\n\n[^1]: A.\n[^2]: B."
	report := Analyze(doc)

	if len(report.SameCitationDuplicates) != 0 {
		t.Errorf("adjacent distinct tags flagged: %+v", report.SameCitationDuplicates)
	}
	if !report.IsClean {
		t.Error("IsClean = false on distinct adjacent tags")
	}
}

func TestAnalyzeTableEscapedTags(t *testing.T) {
	// Table cells carry escaped brackets; the tag must still pair with its
	// definition.
	doc := strings.Join([]string{
		"| Col |",
		"| --- |",
		`| Val \[^5\] |`,
		"",
		"## References",
		"",
		"[^5]: The source.",
	}, "\n")

	report := Analyze(doc)

	if !report.IsClean {
		t.Errorf("escaped table tag not paired with its definition: %+v", report)
	}
	if report.InlineCount != 1 {
		t.Errorf("InlineCount = %d, want 1", report.InlineCount)
	}
}

func TestNormalizedTableRoundTrip(t *testing.T) {
	doc := strings.Join([]string{
		"| Col |",
		"| --- |",
		"| Val [5] |",
		"",
		"## References",
		"",
		"[^5]: The source.",
	}, "\n")

	result := normalize.Normalize(doc, normalize.Options{})
	if result.ChangeCount != 1 {
		t.Fatalf("ChangeCount = %d, want 1\n%s", result.ChangeCount, result.NormalizedText)
	}

	report := Analyze(result.NormalizedText)
	if !report.IsClean {
		t.Errorf("normalized output fails its own integrity check: %+v", report)
	}
	if len(report.MissingDefinitions) != 0 || len(report.OrphanedDefinitions) != 0 {
		t.Errorf("missing = %v, orphaned = %v, want both empty",
			report.MissingDefinitions, report.OrphanedDefinitions)
	}
}

func TestFixDuplicatesConservation(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		want      string
		wantFixes int
	}{
		{"pair", "X.[^A][^A]", "X.[^A]", 1},
		{"triple collapses in one call", "X.[^A][^A][^A]", "X.[^A]", 2},
		{"spaced run", "X.[^A] [^A] [^A]", "X.[^A]", 2},
		{"two runs", "X.[^A][^A] and [^B][^B]", "X.[^A] and [^B]", 2},
		{"nothing to fix", "X.[^A][^B]", "X.[^A][^B]", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixed, n := FixDuplicates(tt.in)
			if fixed != tt.want {
				t.Errorf("fixed = %q, want %q", fixed, tt.want)
			}
			if n != tt.wantFixes {
				t.Errorf("fixes = %d, want %d", n, tt.wantFixes)
			}

			// Second application reaches a fixed point.
			again, n2 := FixDuplicates(fixed)
			if n2 != 0 || again != fixed {
				t.Errorf("second pass: fixes = %d, text = %q", n2, again)
			}
		})
	}
}

func TestFixDuplicatesLeavesReferenceSection(t *testing.T) {
	doc := "Body.[^A][^A]\n\n## References\n\n[^A]: Quoting [^A] [^A] verbatim."
	fixed, n := FixDuplicates(doc)

	if n != 1 {
		t.Errorf("fixes = %d, want 1", n)
	}
	if !strings.Contains(fixed, "Quoting [^A] [^A] verbatim.") {
		t.Errorf("reference section was modified:\n%s", fixed)
	}
	if !strings.HasPrefix(fixed, "Body.[^A]\n") {
		t.Errorf("body duplicate not collapsed:\n%s", fixed)
	}
}

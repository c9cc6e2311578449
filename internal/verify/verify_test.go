package verify

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func buildDoc(body, definition string) string {
	return strings.Join([]string{
		body,
		"",
		"## References",
		"",
		"[^1]: " + definition,
	}, "\n")
}

func TestVerifyMatchingTopicNotFlagged(t *testing.T) {
	doc := buildDoc(
		"Curcumin bioavailability improves with piperine supplementation in human trials.[^1]",
		"Shoba G. Influence of piperine on the pharmacokinetics of curcumin bioavailability in humans.",
	)

	v := New(nil)
	mismatches := v.VerifyCitations(context.Background(), doc, Options{})

	for _, m := range mismatches {
		if m.ConcernLevel == ConcernHigh || m.ConcernLevel == ConcernModerate {
			t.Errorf("matching topic flagged %s: score %v", m.ConcernLevel, m.OverlapScore)
		}
	}
}

func TestVerifyDisjointTopicFlagged(t *testing.T) {
	doc := buildDoc(
		"The appellate court overturned the ruling on jurisdictional grounds.[^1]",
		"Chen L. Photosynthetic efficiency of chloroplast membranes in drought-stressed maize seedlings.",
	)

	v := New(nil)
	mismatches := v.VerifyCitations(context.Background(), doc, Options{})

	if len(mismatches) == 0 {
		t.Fatal("disjoint topics produced no mismatch at the default threshold")
	}
	m := mismatches[0]
	if m.CitationTag != "1" || m.Line != 1 {
		t.Errorf("mismatch = tag %s line %d, want tag 1 line 1", m.CitationTag, m.Line)
	}
	if m.ConcernLevel == ConcernNone {
		t.Errorf("concern level = %s for score %v", m.ConcernLevel, m.OverlapScore)
	}
	if m.LLMVerification != nil {
		t.Error("deep verification ran without being requested")
	}
}

func TestVerifyEmptyKeywordSetsNotFlagged(t *testing.T) {
	// The definition is all stopwords and short tokens: no signal, so the
	// citation must not be flagged.
	doc := buildDoc("Quantum entanglement in superconducting circuits.[^1]", "It is of the to a.")

	v := New(nil)
	mismatches := v.VerifyCitations(context.Background(), doc, Options{})

	if len(mismatches) != 0 {
		t.Errorf("citation with empty keyword set flagged: %+v", mismatches)
	}
}

func TestVerifyUndefinedCitationSkipped(t *testing.T) {
	doc := "A claim.[^ghost]\n\n## References\n\n[^1]: Something unrelated entirely."

	v := New(nil)
	mismatches := v.VerifyCitations(context.Background(), doc, Options{})

	if len(mismatches) != 0 {
		t.Errorf("undefined citation verified: %+v", mismatches)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		score float64
		want  ConcernLevel
	}{
		{0.0, ConcernHigh},
		{0.09, ConcernHigh},
		{0.10, ConcernModerate},
		{0.19, ConcernModerate},
		{0.20, ConcernLow},
		{0.29, ConcernLow},
		{0.30, ConcernNone},
		{0.95, ConcernNone},
	}

	for _, tt := range tests {
		if got := Classify(tt.score); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

// stubVerifier implements DeepVerifier for testing escalation.
type stubVerifier struct {
	verdict *LLMVerification
	err     error
	calls   int
}

func (s *stubVerifier) VerifyCitation(ctx context.Context, contextText, citationText string) (*LLMVerification, error) {
	s.calls++
	return s.verdict, s.err
}

func TestVerifyDeepEscalation(t *testing.T) {
	doc := buildDoc(
		"The appellate court overturned the ruling on jurisdictional grounds.[^1]",
		"Chen L. Photosynthetic efficiency of chloroplast membranes in maize seedlings.",
	)

	stub := &stubVerifier{verdict: &LLMVerification{Match: false, Confidence: 0.9, Model: "test"}}
	v := New(stub)
	mismatches := v.VerifyCitations(context.Background(), doc, Options{DeepVerify: true})

	if len(mismatches) == 0 {
		t.Fatal("expected a mismatch")
	}
	if stub.calls == 0 {
		t.Fatal("deep verifier never called")
	}
	if mismatches[0].LLMVerification == nil || mismatches[0].LLMVerification.Model != "test" {
		t.Errorf("verdict not attached: %+v", mismatches[0].LLMVerification)
	}
}

func TestVerifyDeepFailureDegradesGracefully(t *testing.T) {
	doc := buildDoc(
		"The appellate court overturned the ruling on jurisdictional grounds.[^1]",
		"Chen L. Photosynthetic efficiency of chloroplast membranes in maize seedlings.",
	)

	stub := &stubVerifier{err: errors.New("connection refused")}
	v := New(stub)
	mismatches := v.VerifyCitations(context.Background(), doc, Options{DeepVerify: true})

	if len(mismatches) == 0 {
		t.Fatal("transport failure must not suppress the keyword-overlap result")
	}
	if mismatches[0].LLMVerification != nil {
		t.Errorf("transport failure produced a verdict: %+v", mismatches[0].LLMVerification)
	}
	if mismatches[0].OverlapScore >= DefaultFlagThreshold {
		t.Errorf("overlap score lost: %v", mismatches[0].OverlapScore)
	}
}

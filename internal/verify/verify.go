// Package verify scores whether the prose around an inline citation actually
// matches the topic of the citation's definition.
package verify

import (
	"context"
	"strings"

	"github.com/mdcite/mdcite/internal/document"
	"github.com/mdcite/mdcite/internal/keywords"
)

// ConcernLevel is the ordinal classification of a context/citation mismatch.
type ConcernLevel string

// Concern levels, from benign to suspicious.
const (
	ConcernNone     ConcernLevel = "none"
	ConcernLow      ConcernLevel = "low"
	ConcernModerate ConcernLevel = "moderate"
	ConcernHigh     ConcernLevel = "high"
)

// Ascending score thresholds separating the concern levels, and the default
// flagging threshold. A citation sharing at least 30% weighted keyword
// overlap with its context is considered clean.
const (
	HighThreshold     = 0.10
	ModerateThreshold = 0.20
	LowThreshold      = 0.30

	DefaultFlagThreshold = LowThreshold

	// DefaultWindowLines is how many lines of body text on each side of
	// the inline marker feed the context keyword set.
	DefaultWindowLines = 2
)

// LLMVerification is a second opinion from the optional deep verifier.
type LLMVerification struct {
	Match      bool    `json:"match"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning,omitempty"`
	Model      string  `json:"model,omitempty"`
}

// DeepVerifier is the capability object for LLM-backed second opinions,
// injected at construction. A nil DeepVerifier disables escalation entirely.
type DeepVerifier interface {
	// VerifyCitation judges whether citationText supports the claim made
	// in contextText. Transport failures mean "verification unavailable",
	// never a mismatch confirmation or denial.
	VerifyCitation(ctx context.Context, contextText, citationText string) (*LLMVerification, error)
}

// Mismatch is one flagged citation whose surrounding prose does not match its
// definition. Created transiently per verification pass; never persisted here.
type Mismatch struct {
	Line             int                `json:"line"`
	CitationTag      string             `json:"citation_tag"`
	SurroundingText  string             `json:"surrounding_text"`
	CitationText     string             `json:"citation_text"`
	CitationKeywords []keywords.Keyword `json:"citation_keywords"`
	ContextKeywords  []keywords.Keyword `json:"context_keywords"`
	OverlapScore     float64            `json:"overlap_score"`
	ConcernLevel     ConcernLevel       `json:"concern_level"`
	LLMVerification  *LLMVerification   `json:"llm_verification"`
}

// Options configures a verification pass.
type Options struct {
	// FlagThreshold flags citations scoring below it; 0 means
	// DefaultFlagThreshold.
	FlagThreshold float64
	// WindowLines overrides the context window half-size; 0 means
	// DefaultWindowLines.
	WindowLines int
	// Unweighted disables the IDF-style specificity weighting.
	Unweighted bool
	// DeepVerify escalates flagged high/moderate items to the injected
	// deep verifier, when one is present.
	DeepVerify bool
}

// Verifier runs context verification over documents. Construct with New; the
// zero value works but can never escalate.
type Verifier struct {
	deep DeepVerifier
}

// New returns a Verifier with an optional deep-verification capability.
func New(deep DeepVerifier) *Verifier {
	return &Verifier{deep: deep}
}

// VerifyCitations checks every inline citation in text and returns the
// flagged mismatches, in document order. Citations without a definition are
// skipped here (the integrity checker owns that report), and citations where
// either keyword set comes up empty are never flagged: no signal is not
// evidence of mismatch.
func (v *Verifier) VerifyCitations(ctx context.Context, text string, opts Options) []Mismatch {
	threshold := opts.FlagThreshold
	if threshold == 0 {
		threshold = DefaultFlagThreshold
	}
	window := opts.WindowLines
	if window == 0 {
		window = DefaultWindowLines
	}

	lines := document.Split(text)
	sec := document.FindReferenceSection(lines)

	defs := make(map[string]document.Definition)
	for _, d := range document.Definitions(lines) {
		defs[d.Tag] = d
	}

	extractOpts := keywords.Options{Lemmatize: true, Phrases: true}

	var mismatches []Mismatch
	for _, ref := range document.InlineReferences(lines, sec) {
		def, ok := defs[ref.Tag]
		if !ok {
			continue
		}

		surrounding := contextWindow(lines, sec, ref.Line, window)
		contextKws := keywords.Extract(surrounding, extractOpts)
		citationKws := keywords.Extract(def.Text, extractOpts)

		score := keywords.InclusionScore(contextKws, citationKws, !opts.Unweighted)

		if len(contextKws) == 0 || len(citationKws) == 0 {
			continue
		}
		if score >= threshold {
			continue
		}

		m := Mismatch{
			Line:             ref.Line,
			CitationTag:      ref.Tag,
			SurroundingText:  surrounding,
			CitationText:     def.Text,
			CitationKeywords: citationKws,
			ContextKeywords:  contextKws,
			OverlapScore:     score,
			ConcernLevel:     Classify(score),
		}

		if opts.DeepVerify && v.deep != nil &&
			(m.ConcernLevel == ConcernHigh || m.ConcernLevel == ConcernModerate) {
			if verdict, err := v.deep.VerifyCitation(ctx, surrounding, def.Text); err == nil {
				m.LLMVerification = verdict
			}
		}

		mismatches = append(mismatches, m)
	}

	return mismatches
}

// Classify maps an overlap score to its concern level.
func Classify(score float64) ConcernLevel {
	switch {
	case score < HighThreshold:
		return ConcernHigh
	case score < ModerateThreshold:
		return ConcernModerate
	case score < LowThreshold:
		return ConcernLow
	default:
		return ConcernNone
	}
}

// contextWindow gathers the text of the lines around lineNumber, clamped to
// the document and stopping at the reference section.
func contextWindow(lines []document.Line, sec document.Section, lineNumber, window int) string {
	var parts []string
	for _, l := range lines {
		if l.Number < lineNumber-window || l.Number > lineNumber+window {
			continue
		}
		if sec.Contains(l.Number) || document.IsDefinitionLine(l.Text) {
			continue
		}
		if t := strings.TrimSpace(l.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

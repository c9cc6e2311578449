// Package keywords reduces free text to a ranked keyword/keyphrase set and
// scores the asymmetric overlap between two such sets, using an IDF-style
// specificity heuristic instead of a corpus model.
package keywords

import (
	"sort"
	"strings"
	"unicode"
)

// Defaults for extraction and weighting.
const (
	// DefaultBudget caps the combined keyword set per text.
	DefaultBudget = 15

	// minTokenLength filters out tokens too short to carry signal.
	minTokenLength = 3

	// longTokenLength is where the long-token specificity bonus starts.
	longTokenLength = 8

	genericWeight   = 0.3
	defaultWeight   = 1.0
	longTokenWeight = 1.25
	phraseWeight    = 1.5
)

// lemmaExceptions are words that look like plurals but are irreducible terms;
// stripping their suffix would corrupt them.
var lemmaExceptions = map[string]bool{
	"analysis": true, "atherosclerosis": true, "basis": true, "bias": true,
	"crisis": true, "diabetes": true, "diagnosis": true, "emphasis": true,
	"fibrosis": true, "gas": true, "hypothesis": true, "lens": true,
	"meiosis": true, "mitosis": true, "necrosis": true, "prognosis": true,
	"psychosis": true, "sclerosis": true, "series": true, "species": true,
	"stenosis": true, "thesis": true, "virus": true,
}

// Options controls keyword extraction.
type Options struct {
	// Lemmatize enables conservative plural reduction.
	Lemmatize bool
	// Phrases enables 2-3 word keyphrase extraction.
	Phrases bool
	// Budget caps the combined keyword count; 0 means DefaultBudget.
	Budget int
}

// Keyword is one extracted term with its in-text frequency.
type Keyword struct {
	Term   string  `json:"term"`
	Count  int     `json:"count"`
	Phrase bool    `json:"phrase,omitempty"`
	Weight float64 `json:"weight"`
}

// Extract reduces text to its ranked keyword set: lowercase and strip
// punctuation, drop stopwords and short tokens, optionally lemmatize and pull
// 2-3 word keyphrases, then combine top phrases and top unigrams by frequency
// up to the budget. Phrases outrank unigrams at equal frequency.
func Extract(text string, opts Options) []Keyword {
	budget := opts.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}

	tokens := tokenize(text)

	unigrams := make(map[string]int)
	for _, tok := range tokens {
		if IsStopword(tok) || len(tok) < minTokenLength || leadsWithDigit(tok) {
			continue
		}
		term := tok
		if opts.Lemmatize {
			term = Lemmatize(term)
		}
		unigrams[term]++
	}

	phrases := make(map[string]int)
	if opts.Phrases {
		for n := 2; n <= 3; n++ {
			for i := 0; i+n <= len(tokens); i++ {
				gram := tokens[i : i+n]
				if !phraseEligible(gram) {
					continue
				}
				phrases[strings.Join(gram, " ")]++
			}
		}
	}

	ranked := append(rank(phrases, true), rank(unigrams, false)...)
	if len(ranked) > budget {
		ranked = ranked[:budget]
	}
	for i := range ranked {
		ranked[i].Weight = Weight(ranked[i].Term, ranked[i].Phrase)
	}
	return ranked
}

// Weight returns the IDF-style specificity weight for a term: generic
// academic vocabulary scores low, long tokens and multi-word phrases score
// high, everything else is neutral.
func Weight(term string, phrase bool) float64 {
	if phrase {
		return phraseWeight
	}
	if genericAcademicTerms[term] {
		return genericWeight
	}
	if len([]rune(term)) >= longTokenLength {
		return longTokenWeight
	}
	return defaultWeight
}

// InclusionScore computes the asymmetric inclusion coefficient: the weighted
// fraction of citation keywords found in the context keywords. Either set
// being empty scores 0. With weighted false every term counts 1.0.
func InclusionScore(context, citation []Keyword, weighted bool) float64 {
	if len(context) == 0 || len(citation) == 0 {
		return 0
	}

	contextSet := make(map[string]bool, len(context))
	for _, k := range context {
		contextSet[k.Term] = true
	}

	var total, matched float64
	for _, k := range citation {
		w := 1.0
		if weighted {
			w = k.Weight
		}
		total += w
		if contextSet[k.Term] {
			matched += w
		}
	}
	if total == 0 {
		return 0
	}
	return matched / total
}

// Lemmatize applies conservative suffix-based plural reduction, leaving
// irreducible technical terms alone.
func Lemmatize(word string) string {
	if lemmaExceptions[word] || len(word) <= minTokenLength {
		return word
	}
	switch {
	case strings.HasSuffix(word, "ies") && len(word) > 4:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "sses"),
		strings.HasSuffix(word, "ches"),
		strings.HasSuffix(word, "shes"),
		strings.HasSuffix(word, "xes"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "ss"),
		strings.HasSuffix(word, "us"),
		strings.HasSuffix(word, "is"):
		return word
	case strings.HasSuffix(word, "s"):
		return word[:len(word)-1]
	}
	return word
}

// tokenize lowercases text and splits it on anything that is not a letter,
// digit, or intra-word hyphen.
func tokenize(text string) []string {
	text = strings.ToLower(text)
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
}

// phraseEligible rejects any n-gram touching a stopword, a short token, or a
// digit-leading token.
func phraseEligible(gram []string) bool {
	for _, tok := range gram {
		if IsStopword(tok) || len(tok) < minTokenLength || leadsWithDigit(tok) {
			return false
		}
	}
	return true
}

func leadsWithDigit(tok string) bool {
	return tok != "" && tok[0] >= '0' && tok[0] <= '9'
}

// rank sorts a frequency map into keywords: count descending, term ascending
// for determinism.
func rank(freq map[string]int, phrase bool) []Keyword {
	out := make([]Keyword, 0, len(freq))
	for term, count := range freq {
		out = append(out, Keyword{Term: term, Count: count, Phrase: phrase})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Term < out[j].Term
	})
	return out
}

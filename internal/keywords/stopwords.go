package keywords

// stopwords is a fixed, deliberately domain-agnostic list: function words and
// high-frequency verbs only, no subject-matter vocabulary. Keeping the list
// domain-neutral means the extractor behaves the same on legal, biomedical,
// or engineering prose.
var stopwords = map[string]bool{
	"a": true, "about": true, "above": true, "after": true, "again": true,
	"against": true, "all": true, "also": true, "am": true, "an": true,
	"and": true, "any": true, "are": true, "as": true, "at": true,
	"be": true, "because": true, "been": true, "before": true, "being": true,
	"below": true, "between": true, "both": true, "but": true, "by": true,
	"can": true, "cannot": true, "could": true, "did": true, "do": true,
	"does": true, "doing": true, "down": true, "during": true, "each": true,
	"few": true, "for": true, "from": true, "further": true, "had": true,
	"has": true, "have": true, "having": true, "he": true, "her": true,
	"here": true, "hers": true, "him": true, "his": true, "how": true,
	"i": true, "if": true, "in": true, "into": true, "is": true, "it": true,
	"its": true, "itself": true, "just": true, "may": true, "me": true,
	"might": true, "more": true, "most": true, "much": true, "must": true,
	"my": true, "no": true, "nor": true, "not": true, "now": true,
	"of": true, "off": true, "on": true, "once": true, "only": true,
	"or": true, "other": true, "our": true, "out": true, "over": true,
	"own": true, "per": true, "same": true, "she": true, "should": true,
	"so": true, "some": true, "such": true, "than": true, "that": true,
	"the": true, "their": true, "theirs": true, "them": true, "then": true,
	"there": true, "these": true, "they": true, "this": true, "those": true,
	"through": true, "to": true, "too": true, "under": true, "until": true,
	"up": true, "upon": true, "very": true, "was": true, "we": true,
	"were": true, "what": true, "when": true, "where": true, "which": true,
	"while": true, "who": true, "whom": true, "why": true, "will": true,
	"with": true, "within": true, "without": true, "would": true,
	"you": true, "your": true, "yours": true,
}

// genericAcademicTerms carry little specificity in any scholarly text and get
// a low IDF-style weight. This is a hand-curated heuristic, not a
// corpus-derived statistic: the intent is to downweight generic academic
// vocabulary, not to estimate probabilities.
var genericAcademicTerms = map[string]bool{
	"abstract": true, "analysis": true, "approach": true, "article": true,
	"author": true, "authors": true, "chapter": true, "conclusion": true,
	"data": true, "discussion": true, "effect": true, "effects": true,
	"et": true, "evidence": true, "figure": true, "finding": true,
	"findings": true, "group": true, "groups": true, "introduction": true,
	"journal": true, "method": true, "methods": true, "model": true,
	"paper": true, "research": true, "result": true, "results": true,
	"review": true, "section": true, "significant": true, "study": true,
	"studies": true, "table": true, "value": true, "values": true,
}

// IsStopword reports whether the lowercase word is on the stopword list.
func IsStopword(word string) bool {
	return stopwords[word]
}

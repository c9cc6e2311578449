package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind classifies a normalization change by the separators present in the
// original legacy expression.
type Kind string

// Change kinds.
const (
	KindSingle    Kind = "single"
	KindCommaList Kind = "comma_list"
	KindRange     Kind = "range"
	KindMixed     Kind = "mixed"
)

// Bounds for legacy citation values, per the legacy expression rules: bare
// integers 1-999, ranges never inverted and never spanning more than 100
// integers.
const (
	minCitation  = 1
	maxCitation  = 999
	maxRangeSpan = 100
)

// legacyPattern matches a bracket holding 1-3 digit tokens joined by commas,
// hyphens, en/em dashes, or the word "to". Canonical tags never match because
// their bracket content starts with a caret.
var legacyPattern = regexp.MustCompile(`\[\s*\d{1,3}(?:\s*(?:,|-|–|—|to)\s*\d{1,3})*\s*\]`)

// rangePattern splits one expression component into its range endpoints.
var rangePattern = regexp.MustCompile(`^(\d{1,3})\s*(?:-|–|—|to)\s*(\d{1,3})$`)

// parseExpression parses the inner content of a legacy citation bracket into
// its ordered integer expansion and change kind. Duplicates within one
// expression are preserved in emitted order. ok is false when any component
// fails validation, in which case the whole match is left unchanged.
func parseExpression(inner string) (values []int, kind Kind, ok bool) {
	components := strings.Split(inner, ",")
	hasComma := len(components) > 1
	hasRange := false

	for _, comp := range components {
		comp = strings.TrimSpace(comp)

		if m := rangePattern.FindStringSubmatch(comp); m != nil {
			start, err1 := strconv.Atoi(m[1])
			end, err2 := strconv.Atoi(m[2])
			if err1 != nil || err2 != nil {
				return nil, "", false
			}
			if end < start || end-start > maxRangeSpan {
				return nil, "", false
			}
			if start < minCitation || end > maxCitation {
				return nil, "", false
			}
			hasRange = true
			for v := start; v <= end; v++ {
				values = append(values, v)
			}
			continue
		}

		v, err := strconv.Atoi(comp)
		if err != nil {
			return nil, "", false
		}
		if v < minCitation || v > maxCitation {
			return nil, "", false
		}
		values = append(values, v)
	}

	switch {
	case hasComma && hasRange:
		kind = KindMixed
	case hasRange:
		kind = KindRange
	case hasComma:
		kind = KindCommaList
	default:
		kind = KindSingle
	}

	return values, kind, true
}

package llm

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/mdcite/mdcite/internal/verify"
)

// ErrNoVerdict means the completion held no well-formed verdict object.
var ErrNoVerdict = errors.New("no verdict object in model output")

// thinkingPattern strips tag-delimited reasoning preambles that reasoning
// models emit before their answer.
var thinkingPattern = regexp.MustCompile(`(?s)<(think|thinking|reasoning)>.*?</(think|thinking|reasoning)>`)

// verdictFields is the shape a verdict object must partially match: at least
// one expected field present, decoded case-sensitively.
type verdictFields struct {
	Match      *bool    `json:"match"`
	Confidence *float64 `json:"confidence"`
	Reasoning  *string  `json:"reasoning"`
}

// ParseVerdict extracts the verification verdict from raw model output. It
// tolerates thinking preambles, prose around the object, and fenced JSON; the
// last well-formed object containing at least one expected field wins.
func ParseVerdict(raw string) (*verify.LLMVerification, error) {
	cleaned := thinkingPattern.ReplaceAllString(raw, "")
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")

	var last *verify.LLMVerification
	for _, candidate := range jsonObjects(cleaned) {
		var fields verdictFields
		if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
			continue
		}
		if fields.Match == nil && fields.Confidence == nil && fields.Reasoning == nil {
			continue
		}

		v := &verify.LLMVerification{}
		if fields.Match != nil {
			v.Match = *fields.Match
		}
		if fields.Confidence != nil {
			v.Confidence = *fields.Confidence
		}
		if fields.Reasoning != nil {
			v.Reasoning = *fields.Reasoning
		}
		last = v
	}

	if last == nil {
		return nil, ErrNoVerdict
	}
	return last, nil
}

// jsonObjects returns every balanced top-level {...} span in s, in order.
// Brace counting respects string literals and escapes.
func jsonObjects(s string) []string {
	var objects []string
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i, r := range s {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				if depth == 0 {
					start = i
				}
				depth++
			}
		case '}':
			if !inString && depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					objects = append(objects, s[start:i+1])
					start = -1
				}
			}
		}
	}
	return objects
}

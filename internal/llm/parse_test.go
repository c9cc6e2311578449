package llm

import (
	"errors"
	"testing"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantMatch  bool
		wantConf   float64
		wantErr    bool
	}{
		{
			name:      "bare object",
			raw:       `{"match": true, "confidence": 0.9, "reasoning": "topics align"}`,
			wantMatch: true,
			wantConf:  0.9,
		},
		{
			name:      "thinking preamble stripped",
			raw:       "<think>Let me compare the topics carefully...</think>\n{\"match\": false, \"confidence\": 0.8}",
			wantMatch: false,
			wantConf:  0.8,
		},
		{
			name:      "fenced json",
			raw:       "Here is my answer:\n```json\n{\"match\": true, \"confidence\": 0.7}\n```",
			wantMatch: true,
			wantConf:  0.7,
		},
		{
			name:      "last object wins",
			raw:       `{"match": true, "confidence": 0.2} revised: {"match": false, "confidence": 0.95}`,
			wantMatch: false,
			wantConf:  0.95,
		},
		{
			name:      "object with braces in strings",
			raw:       `{"match": true, "confidence": 0.6, "reasoning": "the set {a, b} matches"}`,
			wantMatch: true,
			wantConf:  0.6,
		},
		{
			name:    "no object",
			raw:     "I cannot determine this.",
			wantErr: true,
		},
		{
			name:    "object without expected fields",
			raw:     `{"status": "ok"}`,
			wantErr: true,
		},
		{
			name:    "malformed json only",
			raw:     `{"match": tru`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVerdict(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrNoVerdict) {
					t.Fatalf("err = %v, want ErrNoVerdict", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVerdict error: %v", err)
			}
			if got.Match != tt.wantMatch {
				t.Errorf("Match = %v, want %v", got.Match, tt.wantMatch)
			}
			if got.Confidence != tt.wantConf {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.wantConf)
			}
		})
	}
}

func TestParseVerdictPartialFields(t *testing.T) {
	got, err := ParseVerdict(`{"match": true}`)
	if err != nil {
		t.Fatalf("ParseVerdict error: %v", err)
	}
	if !got.Match || got.Confidence != 0 {
		t.Errorf("got %+v, want match=true with zero confidence", got)
	}
}

func TestTimeoutFor(t *testing.T) {
	tests := []struct {
		model string
		long  bool
	}{
		{"llama3.2", false},
		{"deepseek-r1:14b", true},
		{"qwq-32b", true},
		{"gpt-4o", false},
		{"o1-preview", true},
	}

	for _, tt := range tests {
		got := TimeoutFor(tt.model)
		if tt.long && got != ReasoningTimeout {
			t.Errorf("TimeoutFor(%q) = %v, want reasoning timeout", tt.model, got)
		}
		if !tt.long && got != DefaultTimeout {
			t.Errorf("TimeoutFor(%q) = %v, want default timeout", tt.model, got)
		}
	}
}

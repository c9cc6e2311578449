package main

import (
	"testing"
	"unicode/utf8"

	"github.com/mdcite/mdcite/internal/config"
)

func TestSetConfigValue(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
		check   func(*config.Config) bool
	}{
		{
			name:  "ollama url",
			key:   "ollama-url",
			value: "http://gpu-box:11434",
			check: func(c *config.Config) bool { return c.OllamaURL == "http://gpu-box:11434" },
		},
		{
			name:  "model list is split and trimmed",
			key:   "ollama-models",
			value: "llama3.2, qwen2.5 ,",
			check: func(c *config.Config) bool {
				return len(c.OllamaModels) == 2 && c.OllamaModels[1] == "qwen2.5"
			},
		},
		{
			name:  "threshold in range",
			key:   "flag-threshold",
			value: "0.25",
			check: func(c *config.Config) bool { return c.FlagThreshold == 0.25 },
		},
		{
			name:    "threshold above one rejected",
			key:     "flag-threshold",
			value:   "1.5",
			wantErr: true,
		},
		{
			name:    "threshold not a number rejected",
			key:     "flag-threshold",
			value:   "high",
			wantErr: true,
		},
		{
			name:  "window lines",
			key:   "window-lines",
			value: "3",
			check: func(c *config.Config) bool { return c.WindowLines == 3 },
		},
		{
			name:    "negative window rejected",
			key:     "window-lines",
			value:   "-1",
			wantErr: true,
		},
		{
			name:    "unknown key rejected",
			key:     "pdf-root",
			value:   "/tmp",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg config.Config
			err := setConfigValue(&cfg, tt.key, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Errorf("setConfigValue(%q, %q): expected error", tt.key, tt.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("setConfigValue(%q, %q): %v", tt.key, tt.value, err)
			}
			if tt.check != nil && !tt.check(&cfg) {
				t.Errorf("setConfigValue(%q, %q): unexpected config %+v", tt.key, tt.value, cfg)
			}
		})
	}
}

func TestGetConfigValueRoundTrip(t *testing.T) {
	var cfg config.Config
	if err := setConfigValue(&cfg, "openai-models", "gpt-4o-mini,gpt-4o"); err != nil {
		t.Fatal(err)
	}

	got, ok := getConfigValue(&cfg, "openai-models")
	if !ok {
		t.Fatal("expected known key")
	}
	if got != "gpt-4o-mini,gpt-4o" {
		t.Errorf("getConfigValue = %q", got)
	}

	if _, ok := getConfigValue(&cfg, "no-such-key"); ok {
		t.Error("expected unknown key to report false")
	}
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("short", 10); got != "short" {
		t.Errorf("truncateString short = %q", got)
	}
	if got := truncateString("a string that is too long", 10); got != "a strin..." {
		t.Errorf("truncateString long = %q", got)
	}
}

func TestTruncateStringRuneBoundary(t *testing.T) {
	got := truncateString("αβγδεζηθικλμν", 10)
	if got != "αβγδεζη..." {
		t.Errorf("truncateString multibyte = %q", got)
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncateString produced invalid UTF-8: %q", got)
	}
}

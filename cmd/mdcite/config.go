package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mdcite/mdcite/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values.

Usage:
  mdcite config                                # Show all config
  mdcite config ollama-url                     # Get specific value
  mdcite config ollama-url http://host:11434   # Set value
  mdcite config flag-threshold 0.25            # Set verify threshold

Keys:
  ollama-url       Base URL of the local inference server
  ollama-models    Comma-separated model candidates, tried in order
  openai-base-url  OpenAI-compatible endpoint for --deep fallback
  openai-models    Comma-separated fallback model candidates
  flag-threshold   Verify overlap threshold (citations below are flagged)
  window-lines     Verify context window half-size in lines`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// ConfigResponse is the response for showing all config. The API key is
// deliberately absent; it only ever comes from the environment or .env.
type ConfigResponse struct {
	OllamaURL     string   `json:"ollama_url,omitempty"`
	OllamaModels  []string `json:"ollama_models,omitempty"`
	OpenAIBaseURL string   `json:"openai_base_url,omitempty"`
	OpenAIModels  []string `json:"openai_models,omitempty"`
	FlagThreshold float64  `json:"flag_threshold,omitempty"`
	WindowLines   int      `json:"window_lines,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	// No args: show all config
	if len(args) == 0 {
		if humanOutput {
			outputHuman("ollama-url:       %s\n", cfg.OllamaURL)
			outputHuman("ollama-models:    %s\n", strings.Join(cfg.OllamaModels, ","))
			outputHuman("openai-base-url:  %s\n", cfg.OpenAIBaseURL)
			outputHuman("openai-models:    %s\n", strings.Join(cfg.OpenAIModels, ","))
			outputHuman("flag-threshold:   %g\n", cfg.FlagThreshold)
			outputHuman("window-lines:     %d\n", cfg.WindowLines)
		} else {
			outputJSON(ConfigResponse{
				OllamaURL:     cfg.OllamaURL,
				OllamaModels:  cfg.OllamaModels,
				OpenAIBaseURL: cfg.OpenAIBaseURL,
				OpenAIModels:  cfg.OpenAIModels,
				FlagThreshold: cfg.FlagThreshold,
				WindowLines:   cfg.WindowLines,
			})
		}
		return nil
	}

	key := args[0]

	// One arg: get specific value
	if len(args) == 1 {
		value, ok := getConfigValue(cfg, key)
		if !ok {
			exitWithError(ExitError, "unknown configuration key: %s", key)
		}
		if humanOutput {
			outputHuman("%s\n", value)
		} else {
			outputJSON(map[string]string{strings.ReplaceAll(key, "-", "_"): value})
		}
		return nil
	}

	// Two args: set value
	value := args[1]
	if err := setConfigValue(cfg, key, value); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if err := cfg.Save(); err != nil {
		exitWithError(ExitConfigError, "saving config: %v", err)
	}

	if humanOutput {
		outputHuman("Set %s = %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}

func getConfigValue(cfg *config.Config, key string) (string, bool) {
	switch key {
	case "ollama-url":
		return cfg.OllamaURL, true
	case "ollama-models":
		return strings.Join(cfg.OllamaModels, ","), true
	case "openai-base-url":
		return cfg.OpenAIBaseURL, true
	case "openai-models":
		return strings.Join(cfg.OpenAIModels, ","), true
	case "flag-threshold":
		return strconv.FormatFloat(cfg.FlagThreshold, 'g', -1, 64), true
	case "window-lines":
		return strconv.Itoa(cfg.WindowLines), true
	}
	return "", false
}

func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "ollama-url":
		cfg.OllamaURL = value
	case "ollama-models":
		cfg.OllamaModels = splitModels(value)
	case "openai-base-url":
		cfg.OpenAIBaseURL = value
	case "openai-models":
		cfg.OpenAIModels = splitModels(value)
	case "flag-threshold":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 || f > 1 {
			return fmt.Errorf("flag-threshold must be a number in [0, 1]: %s", value)
		}
		cfg.FlagThreshold = f
	case "window-lines":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("window-lines must be a non-negative integer: %s", value)
		}
		cfg.WindowLines = n
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

func splitModels(value string) []string {
	var models []string
	for _, m := range strings.Split(value, ",") {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	return models
}

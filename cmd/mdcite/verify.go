package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/mdcite/mdcite/internal/config"
	"github.com/mdcite/mdcite/internal/history"
	"github.com/mdcite/mdcite/internal/llm"
	"github.com/mdcite/mdcite/internal/verify"
	"github.com/spf13/cobra"
)

var (
	verifyDeep       bool
	verifyThreshold  float64
	verifyWindow     int
	verifyUnweighted bool
)

func init() {
	verifyCmd.Flags().BoolVar(&verifyDeep, "deep", false, "Escalate high/moderate concerns to a local or remote LLM")
	verifyCmd.Flags().Float64Var(&verifyThreshold, "threshold", 0, "Flag citations scoring below this overlap (default 0.30)")
	verifyCmd.Flags().IntVar(&verifyWindow, "window", 0, "Context window half-size in lines (default 2)")
	verifyCmd.Flags().BoolVar(&verifyUnweighted, "unweighted", false, "Disable specificity weighting of keyword overlap")
	rootCmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify <file>",
	Short: "Check that citations match their surrounding context",
	Long: `Check every inline citation against the prose around it by comparing
keyword sets between the surrounding text and the citation definition.
Citations scoring below the threshold are flagged with a concern level.
With --deep, high and moderate concerns are escalated to a configured
LLM for a match verdict. Exits with code 4 when citations are flagged.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

// VerifyResponse is the JSON report for the verify command.
type VerifyResponse struct {
	Path       string            `json:"path"`
	Status     string            `json:"status"`
	Threshold  float64           `json:"threshold"`
	Mismatches []verify.Mismatch `json:"mismatches"`
}

func runVerify(cmd *cobra.Command, args []string) error {
	path := args[0]
	text := readDocument(path)

	// .env holds API keys during local development; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	opts := verify.Options{
		FlagThreshold: verifyThreshold,
		WindowLines:   verifyWindow,
		Unweighted:    verifyUnweighted,
		DeepVerify:    verifyDeep,
	}
	if opts.FlagThreshold == 0 && cfg.FlagThreshold > 0 {
		opts.FlagThreshold = cfg.FlagThreshold
	}
	if opts.WindowLines == 0 && cfg.WindowLines > 0 {
		opts.WindowLines = cfg.WindowLines
	}

	var deep verify.DeepVerifier
	if verifyDeep {
		deep = buildDeepVerifier(cfg)
	}

	mismatches := verify.New(deep).VerifyCitations(context.Background(), text, opts)
	if mismatches == nil {
		mismatches = []verify.Mismatch{}
	}

	status := "ok"
	if len(mismatches) > 0 {
		status = "flagged"
	}

	threshold := opts.FlagThreshold
	if threshold == 0 {
		threshold = verify.DefaultFlagThreshold
	}

	resp := VerifyResponse{
		Path:       path,
		Status:     status,
		Threshold:  threshold,
		Mismatches: mismatches,
	}

	recordScan(history.Entry{
		Path:       path,
		Operation:  "verify",
		Mismatches: len(mismatches),
		ReportJSON: marshalReport(resp),
	})

	if humanOutput {
		if len(mismatches) == 0 {
			outputHuman("Context verification: OK (threshold %.2f)\n", threshold)
		} else {
			outputHuman("Context verification: %d citations flagged (threshold %.2f)\n\n",
				len(mismatches), threshold)
			for _, m := range mismatches {
				outputHuman("  [%s] line %d: [^%s] (overlap %.2f)\n",
					m.ConcernLevel, m.Line, m.CitationTag, m.OverlapScore)
				outputHuman("         cites: %s\n", truncateString(m.CitationText, CitationMaxLen))
				if m.LLMVerification != nil {
					verdict := "mismatch"
					if m.LLMVerification.Match {
						verdict = "match"
					}
					outputHuman("         llm: %s (%.2f, %s) %s\n",
						verdict, m.LLMVerification.Confidence,
						m.LLMVerification.Model,
						truncateString(m.LLMVerification.Reasoning, SnippetMaxLen))
				}
				outputHuman("\n")
			}
		}
	} else {
		if err := outputJSON(resp); err != nil {
			return err
		}
	}

	if len(mismatches) > 0 {
		os.Exit(ExitIssuesFound)
	}
	return nil
}

// buildDeepVerifier assembles providers from config: local inference first,
// then an OpenAI-compatible endpoint when a key is configured.
func buildDeepVerifier(cfg *config.Config) verify.DeepVerifier {
	var providers []llm.Provider

	var ollamaOpts []llm.OllamaOption
	if cfg.OllamaURL != "" {
		ollamaOpts = append(ollamaOpts, llm.WithBaseURL(cfg.OllamaURL))
	}
	if len(cfg.OllamaModels) > 0 {
		ollamaOpts = append(ollamaOpts, llm.WithModels(cfg.OllamaModels...))
	}
	providers = append(providers, llm.NewOllamaProvider(ollamaOpts...))

	if cfg.OpenAIAPIKey != "" {
		var openaiOpts []llm.OpenAIOption
		if len(cfg.OpenAIModels) > 0 {
			openaiOpts = append(openaiOpts, llm.WithOpenAIModels(cfg.OpenAIModels...))
		}
		providers = append(providers, llm.NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, openaiOpts...))
	}

	return llm.NewVerifier(providers...)
}

package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/mdcite/mdcite/internal/verify"
)

// RequestsPerSecond bounds outbound verification calls; local servers choke
// on bursts and cloud endpoints meter by the second.
const RequestsPerSecond = 2.0

// Verifier implements verify.DeepVerifier over an ordered provider list.
// Each candidate model is tried at most once per request; there is no
// retry-with-backoff. A connection failure skips the provider's remaining
// candidates but the next provider is still tried.
type Verifier struct {
	providers []Provider
	limiter   *rate.Limiter
}

// NewVerifier creates a deep verifier over the given providers, in fallback
// order.
func NewVerifier(providers ...Provider) *Verifier {
	return &Verifier{
		providers: providers,
		limiter:   rate.NewLimiter(rate.Limit(RequestsPerSecond), 1),
	}
}

// VerifyCitation asks each candidate model in turn whether the citation text
// supports the claim in the context, returning the first parseable verdict.
// Returns ErrUnavailable when every candidate fails; the caller keeps its
// keyword-overlap result either way.
func (v *Verifier) VerifyCitation(ctx context.Context, contextText, citationText string) (*verify.LLMVerification, error) {
	prompt := buildPrompt(contextText, citationText)

	for _, provider := range v.providers {
		for _, model := range provider.Models() {
			if err := v.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
			}

			raw, err := provider.Generate(ctx, model, prompt)
			if err != nil {
				if isConnectionError(err) {
					break // provider unreachable, try the next one
				}
				continue // this model failed, try the next candidate
			}

			verdict, err := ParseVerdict(raw)
			if err != nil {
				continue
			}
			verdict.Model = model
			return verdict, nil
		}
	}

	return nil, ErrUnavailable
}

// buildPrompt renders the structured verification prompt. The model is asked
// for a bare JSON object so ParseVerdict can find it even behind a thinking
// preamble.
func buildPrompt(contextText, citationText string) string {
	return fmt.Sprintf(`You are checking whether a citation supports the text that cites it.

Text surrounding the citation:
%s

Cited reference:
%s

Does the cited reference plausibly support the surrounding text? Respond with
only a JSON object of the form:
{"match": true or false, "confidence": 0.0 to 1.0, "reasoning": "one sentence"}`,
		contextText, citationText)
}

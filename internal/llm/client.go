// Package llm provides the optional deep-verification transport: a
// local-inference provider with an OpenAI-compatible cloud fallback, tried in
// order with no retries. Transport failures degrade to "verification
// unavailable" and are never interpreted as a verdict.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultOllamaURL is the default local-inference endpoint.
	DefaultOllamaURL = "http://localhost:11434"

	// DefaultModel is the default local verification model.
	DefaultModel = "llama3.2"

	// DefaultOpenAIURL is the default chat-completions endpoint.
	DefaultOpenAIURL = "https://api.openai.com/v1"

	// DefaultOpenAIModel is the default cloud fallback model.
	DefaultOpenAIModel = "gpt-4o-mini"

	// DefaultTimeout is the per-request timeout for ordinary models.
	DefaultTimeout = 60 * time.Second

	// ReasoningTimeout is the per-request timeout for larger or reasoning
	// models, which emit thinking preambles before the verdict.
	ReasoningTimeout = 180 * time.Second

	// DefaultTemperature keeps verdicts near-deterministic.
	DefaultTemperature = 0.1

	// DefaultNumPredict caps local generation length; a verdict object
	// plus a short rationale fits comfortably.
	DefaultNumPredict = 512

	apiPathGenerate = "/api/generate"
	apiPathTags     = "/api/tags"
)

// ErrUnavailable means no configured provider produced a usable verdict.
var ErrUnavailable = errors.New("llm verification unavailable")

// Provider is one inference backend with an ordered candidate model list.
type Provider interface {
	// Generate runs one prompt against one model and returns the raw
	// completion text. Each call is a single attempt; callers decide
	// whether to move on.
	Generate(ctx context.Context, model, prompt string) (string, error)

	// Models returns the candidate models in fallback order.
	Models() []string

	// Name identifies the provider in verdicts and errors.
	Name() string
}

// OllamaProvider talks the local-inference protocol: POST with
// {model, prompt, stream:false, options}, response {response}.
type OllamaProvider struct {
	baseURL string
	models  []string
	client  *http.Client
}

// OllamaOption configures an OllamaProvider.
type OllamaOption func(*OllamaProvider)

// WithBaseURL sets the local API base URL.
func WithBaseURL(u string) OllamaOption {
	return func(p *OllamaProvider) {
		p.baseURL = u
	}
}

// WithModels sets the candidate models, tried in order.
func WithModels(models ...string) OllamaOption {
	return func(p *OllamaProvider) {
		p.models = models
	}
}

// NewOllamaProvider creates a local-inference provider.
func NewOllamaProvider(opts ...OllamaOption) *OllamaProvider {
	p := &OllamaProvider{
		baseURL: DefaultOllamaURL,
		models:  []string{DefaultModel},
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// Generate runs one prompt against one local model.
func (p *OllamaProvider) Generate(ctx context.Context, model, prompt string) (string, error) {
	reqBody := ollamaGenerateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: DefaultTemperature,
			NumPredict:  DefaultNumPredict,
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, TimeoutFor(model))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+apiPathGenerate, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, formatErrorBody(resp.Body))
	}

	var result ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return result.Response, nil
}

// Models returns the candidate models in fallback order.
func (p *OllamaProvider) Models() []string {
	return p.models
}

// Name identifies the provider.
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// IsAvailable checks if the local inference server is reachable.
func (p *OllamaProvider) IsAvailable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+apiPathTags, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama is not running: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return nil
}

// OpenAIProvider talks any OpenAI-chat-compatible endpoint with bearer auth.
type OpenAIProvider struct {
	baseURL string
	apiKey  string
	models  []string
	client  *http.Client
}

// OpenAIOption configures an OpenAIProvider.
type OpenAIOption func(*OpenAIProvider)

// WithOpenAIBaseURL sets the chat-completions base URL.
func WithOpenAIBaseURL(u string) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithOpenAIModels sets the candidate models, tried in order.
func WithOpenAIModels(models ...string) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.models = models
	}
}

// NewOpenAIProvider creates a cloud fallback provider. An empty baseURL means
// the default endpoint.
func NewOpenAIProvider(baseURL, apiKey string, opts ...OpenAIOption) *OpenAIProvider {
	if baseURL == "" {
		baseURL = DefaultOpenAIURL
	}
	p := &OpenAIProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		models:  []string{DefaultOpenAIModel},
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate runs one prompt against one chat model.
func (p *OpenAIProvider) Generate(ctx context.Context, model, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: DefaultTemperature,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, TimeoutFor(model))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("api returned status %d: %s", resp.StatusCode, formatErrorBody(resp.Body))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}
	return result.Choices[0].Message.Content, nil
}

// Models returns the candidate models in fallback order.
func (p *OpenAIProvider) Models() []string {
	return p.models
}

// Name identifies the provider.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// reasoningMarkers in a model name indicate a slower, larger model that gets
// the longer timeout.
var reasoningMarkers = []string{"r1", "o1", "o3", "think", "reason", "32b", "70b"}

// TimeoutFor picks the per-request timeout for a model.
func TimeoutFor(model string) time.Duration {
	lower := strings.ToLower(model)
	for _, marker := range reasoningMarkers {
		if strings.Contains(lower, marker) {
			return ReasoningTimeout
		}
	}
	return DefaultTimeout
}

// isConnectionError reports whether err means the provider itself is
// unreachable, as opposed to one model misbehaving. An unreachable provider
// short-circuits its remaining candidates.
func isConnectionError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// formatErrorBody reads and formats the response body for error messages.
func formatErrorBody(body io.Reader) string {
	respBody, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("(failed to read response body: %v)", err)
	}
	return string(respBody)
}

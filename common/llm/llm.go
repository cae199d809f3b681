// Package llm wraps the external text-generation service behind a single
// Generate contract. Providers can hallucinate, refuse, or fail; callers are
// expected to treat the returned text as untrusted and validate downstream.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Provider constants for generation provider selection.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Message roles. The wire contract uses "model" for assistant turns,
// matching the Gemini conversation format; the OpenAI provider translates.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ResponseFormat selects plain text or JSON-constrained output.
type ResponseFormat string

const (
	FormatText ResponseFormat = "text"
	FormatJSON ResponseFormat = "json"
)

// Tool names the optional capabilities a request may enable.
type Tool string

const ToolWebSearch Tool = "web_search"

// Sentinel errors for failure classes the caller must surface distinctly.
var (
	// ErrSafetyBlocked indicates the provider refused the request or
	// response on content-safety grounds.
	ErrSafetyBlocked = errors.New("generation blocked by content safety")
	// ErrUnauthorized indicates an API key or permission problem.
	ErrUnauthorized = errors.New("generation service authentication failed")
)

// Config holds generation client configuration.
type Config struct {
	Provider    string // "gemini" or "openai"
	APIKey      string // Required: API key for the provider
	BaseURL     string // Optional: custom API endpoint
	Model       string // Model name (e.g., "gemini-2.5-flash", "gpt-4o")
	MaxTokens   int
	Temperature float64
	TopP        float64
	TopK        int
}

// Message represents one conversation turn.
type Message struct {
	Role    string // "user" or "model"
	Content string
}

// Request contains everything for a single generation call.
type Request struct {
	SystemInstruction string
	Messages          []Message
	MaxTokens         int
	Temperature       *float64 // nil = client default
	TopP              *float64
	TopK              *int
	ResponseFormat    ResponseFormat // defaults to FormatText
	Tools             []Tool
}

// Response contains the generated text and token accounting.
type Response struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// Client is the generation-service contract. A single awaited call; the full
// text is buffered before the caller sees it.
type Client interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	Model() string
}

// New creates a Client for the configured provider.
// Defaults to Gemini if no provider is specified.
func New(ctx context.Context, cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	provider := cfg.Provider
	if provider == "" {
		provider = ProviderGemini
	}

	switch provider {
	case ProviderGemini:
		return newGeminiClient(ctx, cfg)
	case ProviderOpenAI:
		return newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// GenerateSchemaFrom generates a JSON schema from an instance value.
// Used to embed the expected response shape in system instructions.
func GenerateSchemaFrom(v any) any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(v)
}

// Temp returns a pointer for inline temperature overrides.
func Temp(t float64) *float64 {
	return &t
}

// IsRetryable reports whether a Generate error is worth retrying.
// The revision pipeline does not retry automatically; this exists for
// batch callers like draft generation.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// Safety refusals and auth failures will not succeed on retry.
	if errors.Is(err, ErrSafetyBlocked) || errors.Is(err, ErrUnauthorized) {
		return false
	}
	return true
}

package llm

import (
	"context"
	"fmt"
)

// Client is the provider-agnostic interface over the two LLM capabilities the
// pipeline needs: a strict structured-output call (reasoning) and a free-text
// completion call (generation). Each invocation is a single synchronous
// round-trip; retries and timeouts are the caller's concern.
type Client interface {
	// Chat sends a system/user prompt pair with a strict JSON schema and
	// unmarshals the response into result.
	Chat(ctx context.Context, req Request, result any) (*Response, error)
	// Complete sends a system prompt plus conversation turns and returns the
	// raw text completion.
	Complete(ctx context.Context, req CompleteRequest) (string, error)
	Model() string
}

// Request contains the prompts and output contract for a structured call.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	SchemaName   string
	Schema       any
	MaxTokens    int
	Temperature  *float64 // nil = model default, explicit 0 = deterministic
}

// CompleteRequest contains the prompts for a free-text completion.
type CompleteRequest struct {
	SystemPrompt string
	Messages     []Message
	MaxTokens    int
	Temperature  *float64
}

// Response carries token usage for observability.
type Response struct {
	PromptTokens     int
	CompletionTokens int
}

// New creates a Client for the configured provider.
// Defaults to OpenAI if no provider is specified.
func New(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	provider := cfg.Provider
	if provider == "" {
		provider = ProviderOpenAI
	}

	switch provider {
	case ProviderOpenAI:
		return newOpenAIClient(cfg)
	case ProviderAnthropic:
		return newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

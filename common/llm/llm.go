package llm

import (
	"context"
	"errors"
	"log/slog"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
)

// Provider constants for LLM provider selection.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// ReasoningEffort controls the amount of reasoning for supported models.
type ReasoningEffort string

const (
	ReasoningEffortLow    ReasoningEffort = "low"
	ReasoningEffortMedium ReasoningEffort = "medium"
	ReasoningEffortHigh   ReasoningEffort = "high"
)

// Config holds LLM client configuration.
type Config struct {
	Provider        string          // "openai" or "anthropic"
	APIKey          string          // Required: API key for the provider
	BaseURL         string          // Optional: custom API endpoint
	Model           string          // Model name (e.g., "gpt-4o", "claude-sonnet-4-5-20250514")
	ReasoningEffort ReasoningEffort // Optional: for models that support reasoning
}

// Message represents a conversation turn passed to a completion request.
type Message struct {
	Role    string // "system", "user", "assistant"
	Content string
}

// GenerateSchema generates a strict JSON schema for T.
// Extra fields are rejected so structured responses stay within the contract.
func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// Temp returns a pointer to t for optional temperature fields.
func Temp(t float64) *float64 {
	return &t
}

// IsRetryable reports whether a failed LLM call is worth retrying.
// The pipeline itself never retries (each capability is a single round-trip);
// this is exposed for callers that wrap the pipeline with their own policy.
func IsRetryable(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		slog.DebugContext(ctx, "llm error not retryable: context cancelled or deadline exceeded")
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 429:
			slog.WarnContext(ctx, "llm rate limited, retryable",
				"status_code", apiErr.StatusCode)
			return true
		case apiErr.StatusCode >= 500:
			slog.WarnContext(ctx, "llm server error, retryable",
				"status_code", apiErr.StatusCode)
			return true
		default:
			slog.ErrorContext(ctx, "llm client error, not retryable",
				"status_code", apiErr.StatusCode,
				"error_type", apiErr.Type,
				"error_code", apiErr.Code)
			return false
		}
	}

	// Network errors (no API response) are generally retryable
	slog.WarnContext(ctx, "llm network error, retryable", "error", err)
	return true
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	OTel        OTelConfig
	AnalyzerLLM LLMConfig
	ComposerLLM LLMConfig
	Knowledge   KnowledgeConfig
	ThreadState ThreadStateConfig
	Gate        GateConfig
	Composer    ComposerConfig
	Env         string
	Port        string
	AdminAPIKey string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type LLMConfig struct {
	Provider        string // "openai" or "anthropic"
	APIKey          string
	BaseURL         string // Optional: for custom endpoints
	Model           string
	MaxTokens       int
	Temperature     float64
	ReasoningEffort string // Optional: "low", "medium", "high" for reasoning models
}

// KnowledgeConfig points at the Typesense cluster backing the knowledge base.
// Leaving URL empty disables retrieval; the pipeline treats that the same as
// an empty search result.
type KnowledgeConfig struct {
	URL        string
	APIKey     string
	Collection string
	TopK       int
}

// ThreadStateConfig points at the Redis instance holding per-thread phase
// state. Optional: when unset, callers must supply current_phase themselves.
type ThreadStateConfig struct {
	RedisURL string
	TTLDays  int
}

// GateConfig carries phase-gate policy flags.
type GateConfig struct {
	// AllowHelpRequestBypass lets an explicit prospect help request skip the
	// approval gate when advancing to doing_the_ask. Pending product-owner
	// clarification; default off.
	AllowHelpRequestBypass bool
}

// ComposerConfig carries message-envelope limits.
type ComposerConfig struct {
	MaxResponseChars int // hard ceiling for the short style path
}

// Load loads configuration from environment variables.
// In development it loads .env from the working directory first.
func Load() (Config, error) {
	if getEnv("ENGAGE_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	cfg := Config{
		Env:         getEnv("ENGAGE_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Headers:        getEnv("OTEL_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "engage"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		AnalyzerLLM: LLMConfig{
			Provider:        getEnv("ANALYZER_LLM_PROVIDER", "openai"),
			APIKey:          getEnv("ANALYZER_LLM_API_KEY", getEnv("OPENAI_API_KEY", "")),
			BaseURL:         getEnv("ANALYZER_LLM_BASE_URL", ""),
			Model:           getEnv("ANALYZER_LLM_MODEL", "gpt-4o"),
			MaxTokens:       getEnvInt("ANALYZER_LLM_MAX_TOKENS", 600),
			Temperature:     getEnvFloat("ANALYZER_LLM_TEMPERATURE", 0.3),
			ReasoningEffort: getEnv("ANALYZER_LLM_REASONING_EFFORT", ""),
		},
		ComposerLLM: LLMConfig{
			Provider:    getEnv("COMPOSER_LLM_PROVIDER", "openai"),
			APIKey:      getEnv("COMPOSER_LLM_API_KEY", getEnv("OPENAI_API_KEY", "")),
			BaseURL:     getEnv("COMPOSER_LLM_BASE_URL", ""),
			Model:       getEnv("COMPOSER_LLM_MODEL", "gpt-4o"),
			MaxTokens:   getEnvInt("COMPOSER_LLM_MAX_TOKENS", 150),
			Temperature: getEnvFloat("COMPOSER_LLM_TEMPERATURE", 0.7),
		},
		Knowledge: KnowledgeConfig{
			URL:        getEnv("TYPESENSE_URL", ""),
			APIKey:     getEnv("TYPESENSE_API_KEY", ""),
			Collection: getEnv("TYPESENSE_COLLECTION", "knowledge_base"),
			TopK:       getEnvInt("KNOWLEDGE_TOP_K", 5),
		},
		ThreadState: ThreadStateConfig{
			RedisURL: getEnv("REDIS_URL", ""),
			TTLDays:  getEnvInt("THREAD_STATE_TTL_DAYS", 90),
		},
		Gate: GateConfig{
			AllowHelpRequestBypass: getEnvBool("GATE_ALLOW_HELP_REQUEST_BYPASS", false),
		},
		Composer: ComposerConfig{
			MaxResponseChars: getEnvInt("MAX_RESPONSE_CHARS", 200),
		},
	}

	if cfg.AnalyzerLLM.APIKey == "" {
		return Config{}, fmt.Errorf("ANALYZER_LLM_API_KEY or OPENAI_API_KEY is required")
	}
	if cfg.ComposerLLM.APIKey == "" {
		return Config{}, fmt.Errorf("COMPOSER_LLM_API_KEY or OPENAI_API_KEY is required")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c LLMConfig) Enabled() bool {
	return c.APIKey != "" && (c.Provider == "openai" || c.Provider == "anthropic")
}

func (c KnowledgeConfig) Enabled() bool {
	return c.URL != "" && c.APIKey != ""
}

func (c ThreadStateConfig) Enabled() bool {
	return c.RedisURL != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

const (
	AppName    = "campaign-insights"
	AppVersion = "1.0.0"
)

// LLM provider identifiers.
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

// Config is built once at startup and passed by value into each stage.
type Config struct {
	Port     string
	LogLevel slog.Level

	LLMProvider    string
	LLMTimeout     time.Duration
	LLMTemperature float64

	OpenAIAPIKey string
	OpenAIModel  string

	AnthropicAPIKey string
	AnthropicModel  string

	GoogleAPIKey string
	GoogleModel  string

	OutlierIQRMultiplier       float64
	MinImpressionsThreshold    int64
	HighCTRThreshold           float64
	LowConversionRateThreshold float64
	HighCPAMultiplier          float64
}

func FromEnv() Config {
	lvl := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		lvl = slog.LevelDebug
	}
	return Config{
		Port:     envOr("PORT", "8080"),
		LogLevel: lvl,

		LLMProvider:    envOr("LLM_PROVIDER", ProviderMock),
		LLMTimeout:     time.Duration(envInt("LLM_TIMEOUT_SECONDS", 30)) * time.Second,
		LLMTemperature: envFloat("LLM_TEMPERATURE", 0.3),

		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  envOr("OPENAI_MODEL", "gpt-4o-mini"),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),

		GoogleAPIKey: os.Getenv("GOOGLE_API_KEY"),
		GoogleModel:  envOr("GOOGLE_MODEL", "gemini-2.0-flash"),

		OutlierIQRMultiplier:       envFloat("OUTLIER_IQR_MULTIPLIER", 1.5),
		MinImpressionsThreshold:    envInt("MIN_IMPRESSIONS_THRESHOLD", 1000),
		HighCTRThreshold:           envFloat("HIGH_CTR_THRESHOLD", 5.0),
		LowConversionRateThreshold: envFloat("LOW_CONVERSION_RATE_THRESHOLD", 1.0),
		HighCPAMultiplier:          envFloat("HIGH_CPA_MULTIPLIER", 2.0),
	}
}

// ActiveAPIKey returns the API key for the selected provider, empty for mock.
func (c Config) ActiveAPIKey() string {
	switch c.LLMProvider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderClaude:
		return c.AnthropicAPIKey
	case ProviderGemini:
		return c.GoogleAPIKey
	}
	return ""
}

// LLMConfigured reports whether the selected provider can actually be called.
// The mock provider counts as configured; it just never generates.
func (c Config) LLMConfigured() bool {
	if c.LLMProvider == ProviderMock {
		return true
	}
	return c.ActiveAPIKey() != ""
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int64) int64 {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func envFloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

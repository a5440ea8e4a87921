package insight

import (
	"context"
	"errors"

	"github.com/AngelCh415/campaign-insights/internal/config"
)

// Generator is the capability a text-generation backend has to offer: given a
// prompt, return raw text or fail. One variant per provider, selected once at
// startup; the composer path only ever sees this interface.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrBackendUnavailable marks providers that cannot generate (mock mode or a
// provider selected without its API key). Callers fall back deterministically.
var ErrBackendUnavailable = errors.New("text generation backend unavailable")

// NewGenerator selects the backend variant for the configured provider. An
// unconfigured or unknown provider degrades to the mock variant so that the
// pipeline keeps its deterministic path.
func NewGenerator(cfg config.Config) Generator {
	if !cfg.LLMConfigured() {
		return mockGenerator{}
	}
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return newOpenAIGenerator(cfg)
	case config.ProviderClaude:
		return newAnthropicGenerator(cfg)
	case config.ProviderGemini:
		return newGeminiGenerator(cfg)
	default:
		return mockGenerator{}
	}
}

// mockGenerator is the no-op variant: it always reports itself unavailable,
// which routes every request through the deterministic composer.
type mockGenerator struct{}

func (mockGenerator) Name() string { return config.ProviderMock }

func (mockGenerator) Generate(context.Context, string) (string, error) {
	return "", ErrBackendUnavailable
}

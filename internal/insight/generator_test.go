package insight

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AngelCh415/campaign-insights/internal/config"
)

func TestNewGeneratorSelectsProvider(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{"openai with key", config.Config{LLMProvider: config.ProviderOpenAI, OpenAIAPIKey: "k"}, config.ProviderOpenAI},
		{"claude with key", config.Config{LLMProvider: config.ProviderClaude, AnthropicAPIKey: "k"}, config.ProviderClaude},
		{"gemini with key", config.Config{LLMProvider: config.ProviderGemini, GoogleAPIKey: "k"}, config.ProviderGemini},
		{"openai without key", config.Config{LLMProvider: config.ProviderOpenAI}, config.ProviderMock},
		{"unknown provider", config.Config{LLMProvider: "hal9000"}, config.ProviderMock},
		{"mock", config.Config{LLMProvider: config.ProviderMock}, config.ProviderMock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NewGenerator(tc.cfg).Name())
		})
	}
}

func TestMockGeneratorIsUnavailable(t *testing.T) {
	_, err := mockGenerator{}.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

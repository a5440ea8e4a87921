package insight

import (
	"context"
	"errors"

	"github.com/AngelCh415/campaign-insights/internal/config"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
	anthropicMaxTokens      = 4096
)

type anthropicGenerator struct {
	httpc       HTTPClient
	baseURL     string
	apiKey      string
	model       string
	temperature float64
}

func newAnthropicGenerator(cfg config.Config) *anthropicGenerator {
	return &anthropicGenerator{
		httpc:       newHTTPClient(cfg.LLMTimeout),
		baseURL:     defaultAnthropicBaseURL,
		apiKey:      cfg.AnthropicAPIKey,
		model:       cfg.AnthropicModel,
		temperature: cfg.LLMTemperature,
	}
}

func (g *anthropicGenerator) Name() string { return config.ProviderClaude }

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature,omitempty"`
	Messages    []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (g *anthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	req := anthropicRequest{
		Model:       g.model,
		MaxTokens:   anthropicMaxTokens,
		Temperature: g.temperature,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
	}
	headers := map[string]string{
		"x-api-key":         g.apiKey,
		"anthropic-version": anthropicVersion,
	}
	var resp anthropicResponse
	if err := postJSON(ctx, g.httpc, g.baseURL+"/v1/messages", headers, req, &resp); err != nil {
		return "", err
	}
	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", errors.New("anthropic: no text block in response")
}

package insight

import (
	"context"
	"errors"

	"github.com/AngelCh415/campaign-insights/internal/config"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

type openAIGenerator struct {
	httpc       HTTPClient
	baseURL     string
	apiKey      string
	model       string
	temperature float64
}

func newOpenAIGenerator(cfg config.Config) *openAIGenerator {
	return &openAIGenerator{
		httpc:       newHTTPClient(cfg.LLMTimeout),
		baseURL:     defaultOpenAIBaseURL,
		apiKey:      cfg.OpenAIAPIKey,
		model:       cfg.OpenAIModel,
		temperature: cfg.LLMTemperature,
	}
}

func (g *openAIGenerator) Name() string { return config.ProviderOpenAI }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *openAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	req := chatRequest{
		Model:       g.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: g.temperature,
	}
	var resp chatResponse
	headers := map[string]string{"Authorization": "Bearer " + g.apiKey}
	if err := postJSON(ctx, g.httpc, g.baseURL+"/chat/completions", headers, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

package insight

import (
	"context"
	"errors"
	"fmt"

	"github.com/AngelCh415/campaign-insights/internal/config"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

type geminiGenerator struct {
	httpc       HTTPClient
	baseURL     string
	apiKey      string
	model       string
	temperature float64
}

func newGeminiGenerator(cfg config.Config) *geminiGenerator {
	return &geminiGenerator{
		httpc:       newHTTPClient(cfg.LLMTimeout),
		baseURL:     defaultGeminiBaseURL,
		apiKey:      cfg.GoogleAPIKey,
		model:       cfg.GoogleModel,
		temperature: cfg.LLMTemperature,
	}
}

func (g *geminiGenerator) Name() string { return config.ProviderGemini }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature float64 `json:"temperature,omitempty"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var req geminiRequest
	req.Contents = []geminiContent{{Parts: []geminiPart{{Text: prompt}}}}
	req.GenerationConfig.Temperature = g.temperature

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	var resp geminiResponse
	if err := postJSON(ctx, g.httpc, url, nil, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini: empty candidates")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

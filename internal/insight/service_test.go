package insight

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/campaign-insights/internal/metrics"
	"github.com/AngelCh415/campaign-insights/internal/models"
)

type fakeGenerator struct {
	raw string
	err error
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return f.raw, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const validPayload = "```json\n" + `{
  "executive_summary": "Four campaigns, one burning budget.",
  "key_issues": [
    {
      "title": "Zero conversions",
      "description": "Dead E spends without converting.",
      "affected_campaigns": ["Dead E"],
      "severity": "critical",
      "potential_impact": "Full budget loss."
    }
  ],
  "recommendations": [
    {
      "title": "Pause Dead E",
      "description": "Stop its spend today.",
      "rationale": "No return on half the budget.",
      "priority": "high",
      "expected_outcome": "Immediate savings."
    }
  ],
  "risk_alerts": []
}` + "\n```"

func TestGenerateUsesBackendPayload(t *testing.T) {
	svc := NewService(&fakeGenerator{raw: validPayload}, testLogger())
	a := analysisWithPatterns()

	resp := svc.Generate(context.Background(), a)
	assert.Equal(t, "Four campaigns, one burning budget.", resp.ExecutiveSummary)
	require.Len(t, resp.KeyIssues, 1)
	assert.Equal(t, "Zero conversions", resp.KeyIssues[0].Title)
	assert.Equal(t, models.SeverityCritical, resp.KeyIssues[0].Severity)
	assert.Equal(t, a, resp.MetricsSummary)
}

func TestGenerateFallsBackWhenBackendFails(t *testing.T) {
	svc := NewService(&fakeGenerator{err: errors.New("boom")}, testLogger())
	a := analysisWithPatterns(models.PatternDetection{
		PatternType: metrics.PatternHighCPA,
		Campaigns:   []string{"X"},
		Description: "d",
		Severity:    models.SeverityHigh,
	})

	resp := svc.Generate(context.Background(), a)
	want := Compose(a)
	want.GeneratedAt = resp.GeneratedAt
	assert.Equal(t, want, resp)
}

func TestGenerateFallsBackWhenBackendUnavailable(t *testing.T) {
	svc := NewService(&fakeGenerator{err: ErrBackendUnavailable}, testLogger())
	resp := svc.Generate(context.Background(), analysisWithPatterns())
	assert.Contains(t, resp.ExecutiveSummary, "Analysis of 4 campaigns")
}

func TestGenerateFallsBackOnMalformedJSON(t *testing.T) {
	svc := NewService(&fakeGenerator{raw: "not json at all"}, testLogger())
	resp := svc.Generate(context.Background(), analysisWithPatterns())
	assert.Contains(t, resp.ExecutiveSummary, "Analysis of 4 campaigns")
}

func TestGenerateFallsBackOnInvalidSeverity(t *testing.T) {
	raw := `{"executive_summary":"s","key_issues":[{"title":"t","description":"d","severity":"catastrophic"}]}`
	svc := NewService(&fakeGenerator{raw: raw}, testLogger())
	resp := svc.Generate(context.Background(), analysisWithPatterns())
	assert.Contains(t, resp.ExecutiveSummary, "Analysis of 4 campaigns")
}

func TestParsePayloadDefaultsEmptySummary(t *testing.T) {
	payload, err := parseInsightPayload(`{"key_issues":[],"recommendations":[],"risk_alerts":[]}`)
	require.NoError(t, err)
	assert.Equal(t, "Analysis complete.", payload.ExecutiveSummary)
}

func TestParsePayloadRejectsBadRecommendation(t *testing.T) {
	raw := `{"executive_summary":"s","recommendations":[{"title":"t","description":"d","priority":"high"}]}`
	_, err := parseInsightPayload(raw)
	assert.Error(t, err)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences(" {\"a\":1} "))
	assert.Equal(t, `{"a":1}`, stripFences("Here you go:\n```json\n{\"a\":1}\n```\nEnjoy."))
}

func TestBuildPromptEmbedsAnalysisData(t *testing.T) {
	prompt, err := buildPrompt(analysisWithPatterns())
	require.NoError(t, err)
	assert.NotContains(t, prompt, "{analysis_data}")
	assert.Contains(t, prompt, `"total_campaigns": 4`)
}

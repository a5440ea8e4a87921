package insight

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AngelCh415/campaign-insights/internal/models"
)

//go:embed prompt.txt
var promptTemplate string

// Service turns a MetricsAnalysis into the final report. When the backend
// call fails in any way (unreachable, timeout, malformed output) it degrades
// to the deterministic composer; Generate never returns an error.
type Service struct {
	gen Generator
	log *slog.Logger
}

func NewService(gen Generator, log *slog.Logger) *Service {
	return &Service{gen: gen, log: log}
}

func (s *Service) Generate(ctx context.Context, analysis models.MetricsAnalysis) models.InsightResponse {
	prompt, err := buildPrompt(analysis)
	if err != nil {
		s.log.Error("prompt build failed", slog.String("err", err.Error()))
		return Compose(analysis)
	}

	raw, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, ErrBackendUnavailable) {
			s.log.Info("backend unavailable, using deterministic composer",
				slog.String("backend", s.gen.Name()))
		} else {
			s.log.Warn("backend call failed, using deterministic composer",
				slog.String("backend", s.gen.Name()), slog.String("err", err.Error()))
		}
		return Compose(analysis)
	}

	payload, err := parseInsightPayload(raw)
	if err != nil {
		s.log.Warn("backend response rejected, using deterministic composer",
			slog.String("backend", s.gen.Name()), slog.String("err", err.Error()))
		return Compose(analysis)
	}

	s.log.Info("backend insights generated",
		slog.String("backend", s.gen.Name()),
		slog.Int("issues", len(payload.KeyIssues)))

	return models.InsightResponse{
		ExecutiveSummary: payload.ExecutiveSummary,
		KeyIssues:        payload.KeyIssues,
		Recommendations:  payload.Recommendations,
		RiskAlerts:       payload.RiskAlerts,
		MetricsSummary:   analysis,
		GeneratedAt:      time.Now().UTC(),
	}
}

func buildPrompt(analysis models.MetricsAnalysis) (string, error) {
	data, err := json.MarshalIndent(buildContext(analysis), "", "  ")
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(promptTemplate, "{analysis_data}", string(data)), nil
}

type insightPayload struct {
	ExecutiveSummary string                  `json:"executive_summary"`
	KeyIssues        []models.KeyIssue       `json:"key_issues"`
	Recommendations  []models.Recommendation `json:"recommendations"`
	RiskAlerts       []models.RiskAlert      `json:"risk_alerts"`
}

// parseInsightPayload strictly parses a backend response: fenced code blocks
// are stripped, the JSON must decode, and every entry must carry its required
// fields with known severity/priority values.
func parseInsightPayload(raw string) (insightPayload, error) {
	var payload insightPayload
	if err := json.Unmarshal([]byte(stripFences(raw)), &payload); err != nil {
		return insightPayload{}, fmt.Errorf("decode insight payload: %w", err)
	}
	if payload.ExecutiveSummary == "" {
		payload.ExecutiveSummary = "Analysis complete."
	}
	for _, issue := range payload.KeyIssues {
		if issue.Title == "" || issue.Description == "" || !validSeverity(issue.Severity) {
			return insightPayload{}, errors.New("invalid key issue in payload")
		}
	}
	for _, rec := range payload.Recommendations {
		if rec.Title == "" || rec.Description == "" || rec.Rationale == "" ||
			rec.ExpectedOutcome == "" || !validPriority(rec.Priority) {
			return insightPayload{}, errors.New("invalid recommendation in payload")
		}
	}
	for _, alert := range payload.RiskAlerts {
		if alert.Title == "" || alert.Description == "" || alert.Mitigation == "" ||
			!validSeverity(alert.Severity) {
			return insightPayload{}, errors.New("invalid risk alert in payload")
		}
	}
	return payload, nil
}

// stripFences unwraps ```json ... ``` (or bare ``` ... ```) blocks the model
// may have wrapped around its JSON.
func stripFences(s string) string {
	if i := strings.Index(s, "```json"); i != -1 {
		s = s[i+len("```json"):]
		if j := strings.Index(s, "```"); j != -1 {
			s = s[:j]
		}
		return strings.TrimSpace(s)
	}
	if i := strings.Index(s, "```"); i != -1 {
		s = s[i+len("```"):]
		if j := strings.Index(s, "```"); j != -1 {
			s = s[:j]
		}
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(s)
}

func validSeverity(s models.Severity) bool {
	switch s {
	case models.SeverityLow, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical:
		return true
	}
	return false
}

func validPriority(p models.Priority) bool {
	switch p {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
		return true
	}
	return false
}

package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/campaign-insights/internal/metrics"
	"github.com/AngelCh415/campaign-insights/internal/models"
)

func analysisWithPatterns(patterns ...models.PatternDetection) models.MetricsAnalysis {
	return models.MetricsAnalysis{
		TotalCampaigns:   4,
		TotalSpend:       1250.5,
		TotalConversions: 80,
		CPASummary:       models.MetricsSummary{Mean: 15.63},
		PatternsDetected: patterns,
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	a := analysisWithPatterns(models.PatternDetection{
		PatternType: metrics.PatternHighCPA,
		Campaigns:   []string{"X"},
		Description: "d",
		Severity:    models.SeverityHigh,
	})

	first := Compose(a)
	second := Compose(a)
	second.GeneratedAt = first.GeneratedAt
	assert.Equal(t, first, second)
}

func TestExecutiveSummaryMentionsSeverities(t *testing.T) {
	a := analysisWithPatterns(
		models.PatternDetection{PatternType: metrics.PatternZeroConversionsHighSpend, Severity: models.SeverityCritical},
		models.PatternDetection{PatternType: metrics.PatternHighCPA, Severity: models.SeverityHigh},
	)

	summary := executiveSummary(a)
	assert.Contains(t, summary, "Analysis of 4 campaigns")
	assert.Contains(t, summary, "$1,250.50")
	assert.Contains(t, summary, "ATTENTION: 1 critical issue(s) detected.")
	assert.Contains(t, summary, "1 high-severity issue(s) identified.")
	assert.Contains(t, summary, "Average CPA: $15.63.")
}

func TestExecutiveSummaryCleanRun(t *testing.T) {
	summary := executiveSummary(analysisWithPatterns())
	assert.NotContains(t, summary, "ATTENTION")
	assert.NotContains(t, summary, "high-severity")
}

func TestKeyIssuesCapAffectedCampaigns(t *testing.T) {
	a := analysisWithPatterns(models.PatternDetection{
		PatternType: metrics.PatternLowVolume,
		Campaigns:   []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7"},
		Description: "seven tiny campaigns",
		Severity:    models.SeverityMedium,
	})

	issues := keyIssues(a)
	require.Len(t, issues, 1)
	assert.Equal(t, "Low Volume", issues[0].Title)
	assert.Equal(t, []string{"c1", "c2", "c3", "c4", "c5"}, issues[0].AffectedCampaigns)
	assert.Equal(t, "seven tiny campaigns", issues[0].Description)
}

func TestRecommendationsPerPatternType(t *testing.T) {
	a := analysisWithPatterns(
		models.PatternDetection{PatternType: metrics.PatternZeroConversionsHighSpend, Severity: models.SeverityCritical},
		models.PatternDetection{PatternType: metrics.PatternHighCTRLowConversion, Severity: models.SeverityHigh},
	)

	recs := recommendations(a)
	require.Len(t, recs, 2)
	assert.Equal(t, "Pause or review campaigns without conversions", recs[0].Title)
	assert.Equal(t, models.PriorityHigh, recs[0].Priority)
	assert.Equal(t, "Review landing pages", recs[1].Title)
	assert.Equal(t, models.PriorityMedium, recs[1].Priority)
}

func TestRecommendationsDefaultToMonitoring(t *testing.T) {
	recs := recommendations(analysisWithPatterns())
	require.Len(t, recs, 1)
	assert.Equal(t, "Keep active monitoring", recs[0].Title)
	assert.Equal(t, models.PriorityLow, recs[0].Priority)
}

func TestRiskAlertsSkipMediumSeverity(t *testing.T) {
	a := analysisWithPatterns(
		models.PatternDetection{PatternType: metrics.PatternLowVolume, Severity: models.SeverityMedium},
		models.PatternDetection{PatternType: metrics.PatternZeroConversionsHighSpend, Description: "burning money", Severity: models.SeverityCritical},
	)

	alerts := riskAlerts(a)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Risk: Zero Conversions High Spend", alerts[0].Title)
	assert.Equal(t, "burning money", alerts[0].Description)
	assert.Equal(t, models.SeverityCritical, alerts[0].Severity)
}

func TestComposeEchoesAnalysis(t *testing.T) {
	a := analysisWithPatterns()
	resp := Compose(a)
	assert.Equal(t, a, resp.MetricsSummary)
	assert.False(t, resp.GeneratedAt.IsZero())
}

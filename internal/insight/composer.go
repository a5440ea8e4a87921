package insight

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/AngelCh415/campaign-insights/internal/metrics"
	"github.com/AngelCh415/campaign-insights/internal/models"
)

const maxAffectedCampaigns = 5

var (
	printer    = message.NewPrinter(language.English)
	titleCaser = cases.Title(language.English)
)

// Compose builds the report without any external backend. It is the mandatory
// deterministic path: total over any MetricsAnalysis, identical output for
// identical input apart from the timestamp.
func Compose(analysis models.MetricsAnalysis) models.InsightResponse {
	return models.InsightResponse{
		ExecutiveSummary: executiveSummary(analysis),
		KeyIssues:        keyIssues(analysis),
		Recommendations:  recommendations(analysis),
		RiskAlerts:       riskAlerts(analysis),
		MetricsSummary:   analysis,
		GeneratedAt:      time.Now().UTC(),
	}
}

func executiveSummary(a models.MetricsAnalysis) string {
	var critical, high int
	for _, p := range a.PatternsDetected {
		switch p.Severity {
		case models.SeverityCritical:
			critical++
		case models.SeverityHigh:
			high++
		}
	}

	var issues strings.Builder
	if critical > 0 {
		fmt.Fprintf(&issues, "ATTENTION: %d critical issue(s) detected. ", critical)
	}
	if high > 0 {
		fmt.Fprintf(&issues, "%d high-severity issue(s) identified. ", high)
	}

	return printer.Sprintf(
		"Analysis of %d campaigns with a total spend of $%.2f and %d conversions. %sAverage CPA: $%.2f.",
		a.TotalCampaigns, a.TotalSpend, a.TotalConversions, issues.String(), a.CPASummary.Mean)
}

// keyIssues maps patterns to issues 1:1, in pattern order, capping the
// affected-campaign list at five names.
func keyIssues(a models.MetricsAnalysis) []models.KeyIssue {
	issues := make([]models.KeyIssue, 0, len(a.PatternsDetected))
	for _, p := range a.PatternsDetected {
		affected := p.Campaigns
		if len(affected) > maxAffectedCampaigns {
			affected = affected[:maxAffectedCampaigns]
		}
		issues = append(issues, models.KeyIssue{
			Title:             patternTitle(p.PatternType),
			Description:       p.Description,
			AffectedCampaigns: affected,
			Severity:          p.Severity,
			PotentialImpact:   "Requires detailed analysis to estimate the financial impact.",
		})
	}
	return issues
}

// recommendations are rule-based per pattern type present, not per instance.
func recommendations(a models.MetricsAnalysis) []models.Recommendation {
	var recs []models.Recommendation

	if hasPattern(a, metrics.PatternHighCPA) {
		recs = append(recs, models.Recommendation{
			Title:           "Optimize campaigns with high CPA",
			Description:     "Review targeting, creatives and landing pages of the flagged campaigns.",
			Rationale:       "CPA above the average drags down the overall return on investment.",
			Priority:        models.PriorityHigh,
			ExpectedOutcome: "20-30% reduction in average CPA.",
		})
	}

	if hasPattern(a, metrics.PatternZeroConversionsHighSpend) {
		recs = append(recs, models.Recommendation{
			Title:           "Pause or review campaigns without conversions",
			Description:     "Decide whether campaigns with zero conversions should be paused immediately.",
			Rationale:       "Budget is being spent with no measurable return.",
			Priority:        models.PriorityHigh,
			ExpectedOutcome: "Immediate budget savings.",
		})
	}

	if hasPattern(a, metrics.PatternHighCTRLowConversion) {
		recs = append(recs, models.Recommendation{
			Title:           "Review landing pages",
			Description:     "Analyze the post-click experience of campaigns with high CTR but low conversion.",
			Rationale:       "High engagement is not translating into conversions.",
			Priority:        models.PriorityMedium,
			ExpectedOutcome: "10-20% increase in conversion rate.",
		})
	}

	if len(recs) == 0 {
		recs = append(recs, models.Recommendation{
			Title:           "Keep active monitoring",
			Description:     "Continue tracking metrics and comparing against industry benchmarks.",
			Rationale:       "Campaigns are within expected parameters.",
			Priority:        models.PriorityLow,
			ExpectedOutcome: "Early detection of problems.",
		})
	}
	return recs
}

// riskAlerts covers every high or critical pattern, in pattern order.
func riskAlerts(a models.MetricsAnalysis) []models.RiskAlert {
	var alerts []models.RiskAlert
	for _, p := range a.PatternsDetected {
		if p.Severity != models.SeverityHigh && p.Severity != models.SeverityCritical {
			continue
		}
		alerts = append(alerts, models.RiskAlert{
			Title:       "Risk: " + patternTitle(p.PatternType),
			Description: p.Description,
			Severity:    p.Severity,
			Mitigation:  "Review the affected campaign(s) immediately and consider pausing.",
		})
	}
	return alerts
}

func hasPattern(a models.MetricsAnalysis, patternType string) bool {
	for _, p := range a.PatternsDetected {
		if p.PatternType == patternType {
			return true
		}
	}
	return false
}

func patternTitle(patternType string) string {
	return titleCaser.String(strings.ReplaceAll(patternType, "_", " "))
}

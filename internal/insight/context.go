package insight

// Reduced, human-readable view of a MetricsAnalysis handed to the backend:
// currency and percentage strings instead of raw floats, matching issues by
// type and severity. Keeps the prompt small and the numbers unambiguous.

import "github.com/AngelCh415/campaign-insights/internal/models"

type contextOverview struct {
	TotalCampaigns   int    `json:"total_campaigns"`
	TotalSpend       string `json:"total_spend"`
	TotalConversions int64  `json:"total_conversions"`
	AvgCPA           string `json:"avg_cpa"`
	AvgCTR           string `json:"avg_ctr"`
}

type contextChannel struct {
	Name        string `json:"name"`
	Campaigns   int    `json:"campaigns"`
	Spend       string `json:"spend"`
	Conversions int64  `json:"conversions"`
	AvgCPA      string `json:"avg_cpa"`
}

type contextIssue struct {
	Type        string   `json:"type"`
	Severity    string   `json:"severity"`
	Campaigns   []string `json:"campaigns"`
	Description string   `json:"description"`
}

type analysisContext struct {
	Overview         contextOverview  `json:"overview"`
	TopPerformers    []string         `json:"top_performers"`
	BottomPerformers []string         `json:"bottom_performers"`
	Channels         []contextChannel `json:"channels"`
	Issues           []contextIssue   `json:"issues"`
}

func buildContext(a models.MetricsAnalysis) analysisContext {
	ctx := analysisContext{
		Overview: contextOverview{
			TotalCampaigns:   a.TotalCampaigns,
			TotalSpend:       printer.Sprintf("$%.2f", a.TotalSpend),
			TotalConversions: a.TotalConversions,
			AvgCPA:           printer.Sprintf("$%.2f", a.CPASummary.Mean),
			AvgCTR:           printer.Sprintf("%.2f%%", a.CTRSummary.Mean),
		},
		TopPerformers:    a.TopPerformers,
		BottomPerformers: a.BottomPerformers,
	}
	for _, ch := range a.ByChannel {
		ctx.Channels = append(ctx.Channels, contextChannel{
			Name:        ch.Channel,
			Campaigns:   ch.CampaignCount,
			Spend:       printer.Sprintf("$%.2f", ch.TotalCost),
			Conversions: ch.TotalConversions,
			AvgCPA:      printer.Sprintf("$%.2f", ch.AvgCPA),
		})
	}
	for _, p := range a.PatternsDetected {
		ctx.Issues = append(ctx.Issues, contextIssue{
			Type:        p.PatternType,
			Severity:    string(p.Severity),
			Campaigns:   p.Campaigns,
			Description: p.Description,
		})
	}
	return ctx
}

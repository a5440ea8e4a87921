package models

import "time"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Cell is one table cell as read from the source file. Num only carries a
// value when Null is false and the cell sits in a numeric column.
type Cell struct {
	Text string
	Num  float64
	Null bool
}

// Table is an ordered column set plus a row-major cell matrix. Row order is
// insertion order from the source file.
type Table struct {
	Columns []string
	Rows    [][]Cell
}

// Col returns the index of the named column, -1 when absent.
func (t Table) Col(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumns reports whether every named column is present.
func (t Table) HasColumns(names ...string) bool {
	for _, n := range names {
		if t.Col(n) == -1 {
			return false
		}
	}
	return true
}

// CampaignRow is one campaign-period record in the canonical schema.
type CampaignRow struct {
	CampaignName string  `json:"campaign_name"`
	Impressions  int64   `json:"impressions"`
	Clicks       int64   `json:"clicks"`
	CTR          float64 `json:"ctr"`
	Conversions  int64   `json:"conversions"`
	Cost         float64 `json:"cost"`
	CPA          float64 `json:"cpa"`
	Channel      string  `json:"channel"`
}

// ValidationError is a single validation finding. Row is 1-indexed plus the
// header line (so the first data row is 2); zero means not row-scoped.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Row     int    `json:"row,omitempty"`
	Value   string `json:"value,omitempty"`
}

type ValidationResult struct {
	IsValid       bool              `json:"is_valid"`
	Errors        []ValidationError `json:"errors"`
	Warnings      []ValidationError `json:"warnings"`
	RowsProcessed int               `json:"rows_processed"`
}

// MetricsSummary is the five-number digest of one numeric column.
type MetricsSummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

type ChannelMetrics struct {
	Channel          string  `json:"channel"`
	TotalImpressions int64   `json:"total_impressions"`
	TotalClicks      int64   `json:"total_clicks"`
	TotalConversions int64   `json:"total_conversions"`
	TotalCost        float64 `json:"total_cost"`
	AvgCTR           float64 `json:"avg_ctr"`
	AvgCPA           float64 `json:"avg_cpa"`
	CampaignCount    int     `json:"campaign_count"`
}

type PatternDetection struct {
	PatternType string   `json:"pattern_type"`
	Campaigns   []string `json:"campaigns"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

type MetricsAnalysis struct {
	TotalCampaigns   int     `json:"total_campaigns"`
	TotalSpend       float64 `json:"total_spend"`
	TotalConversions int64   `json:"total_conversions"`

	ImpressionsSummary MetricsSummary `json:"impressions_summary"`
	CTRSummary         MetricsSummary `json:"ctr_summary"`
	CPASummary         MetricsSummary `json:"cpa_summary"`
	ConversionsSummary MetricsSummary `json:"conversions_summary"`

	ByChannel []ChannelMetrics `json:"by_channel"`

	PatternsDetected []PatternDetection `json:"patterns_detected"`

	TopPerformers    []string `json:"top_performers"`
	BottomPerformers []string `json:"bottom_performers"`
}

type KeyIssue struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	AffectedCampaigns []string `json:"affected_campaigns"`
	Severity          Severity `json:"severity"`
	PotentialImpact   string   `json:"potential_impact"`
}

type Recommendation struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Rationale       string   `json:"rationale"`
	Priority        Priority `json:"priority"`
	ExpectedOutcome string   `json:"expected_outcome"`
}

type RiskAlert struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Mitigation  string   `json:"mitigation"`
}

// InsightResponse is the caller-facing report.
type InsightResponse struct {
	ExecutiveSummary string           `json:"executive_summary"`
	KeyIssues        []KeyIssue       `json:"key_issues"`
	Recommendations  []Recommendation `json:"recommendations"`
	RiskAlerts       []RiskAlert      `json:"risk_alerts"`
	MetricsSummary   MetricsAnalysis  `json:"metrics_summary"`
	GeneratedAt      time.Time        `json:"generated_at"`
}

package metrics

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/AngelCh415/campaign-insights/internal/models"
)

// Thresholds are the pattern-detector tuning values, established once at
// startup and read-only afterwards.
type Thresholds struct {
	HighCTR           float64 // percent
	LowConversionRate float64 // percent
	HighCPAMultiplier float64 // times the average CPA
	MinImpressions    int64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		HighCTR:           5.0,
		LowConversionRate: 1.0,
		HighCPAMultiplier: 2.0,
		MinImpressions:    1000,
	}
}

const (
	PatternHighCTRLowConversion     = "high_ctr_low_conversion"
	PatternHighCPA                  = "high_cpa"
	PatternLowVolume                = "low_volume"
	PatternZeroConversionsHighSpend = "zero_conversions_high_spend"

	rankSize = 3
)

// grouped-thousands formatting for pattern descriptions
var printer = message.NewPrinter(language.English)

// Analyze computes the full deterministic result over a validated table. It
// is a pure function; it cannot fail and never mutates its input.
func Analyze(rows []models.CampaignRow, th Thresholds) models.MetricsAnalysis {
	patterns := append([]models.PatternDetection{}, detectHighCTRLowConversion(rows, th)...)
	patterns = append(patterns, detectHighCPA(rows, th)...)
	patterns = append(patterns, detectLowVolume(rows, th)...)
	patterns = append(patterns, detectZeroConversionsHighSpend(rows)...)

	top, bottom := rankCampaigns(rows, rankSize)

	var totalSpend float64
	var totalConversions int64
	for _, r := range rows {
		totalSpend += r.Cost
		totalConversions += r.Conversions
	}

	return models.MetricsAnalysis{
		TotalCampaigns:   len(rows),
		TotalSpend:       totalSpend,
		TotalConversions: totalConversions,

		ImpressionsSummary: Summary(column(rows, func(r models.CampaignRow) float64 { return float64(r.Impressions) })),
		CTRSummary:         Summary(column(rows, func(r models.CampaignRow) float64 { return r.CTR })),
		CPASummary:         Summary(column(rows, func(r models.CampaignRow) float64 { return r.CPA })),
		ConversionsSummary: Summary(column(rows, func(r models.CampaignRow) float64 { return float64(r.Conversions) })),

		ByChannel:        groupByChannel(rows),
		PatternsDetected: patterns,
		TopPerformers:    top,
		BottomPerformers: bottom,
	}
}

// Summary computes the five-number digest of one column. The standard
// deviation is the sample deviation; a single-element column yields 0.
func Summary(values []float64) models.MetricsSummary {
	if len(values) == 0 {
		return models.MetricsSummary{}
	}

	var sum float64
	min, max := values[0], values[0]
	for _, v := range values {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	mean := sum / float64(len(values))

	std := 0.0
	if len(values) > 1 {
		var sq float64
		for _, v := range values {
			sq += (v - mean) * (v - mean)
		}
		std = math.Sqrt(sq / float64(len(values)-1))
	}

	return models.MetricsSummary{
		Mean:   mean,
		Median: median(values),
		Std:    std,
		Min:    min,
		Max:    max,
	}
}

func median(values []float64) float64 {
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func column(rows []models.CampaignRow, f func(models.CampaignRow) float64) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = f(r)
	}
	return out
}

// detectHighCTRLowConversion flags rows whose CTR clears the high-CTR
// threshold while the row-level conversion rate stays under the low
// threshold. Division by zero clicks counts as a 0% conversion rate.
func detectHighCTRLowConversion(rows []models.CampaignRow, th Thresholds) []models.PatternDetection {
	var names []string
	for _, r := range rows {
		convRate := 0.0
		if r.Clicks > 0 {
			convRate = float64(r.Conversions) / float64(r.Clicks) * 100
		}
		if r.CTR > th.HighCTR && convRate < th.LowConversionRate {
			names = append(names, r.CampaignName)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return []models.PatternDetection{{
		PatternType: PatternHighCTRLowConversion,
		Campaigns:   names,
		Description: fmt.Sprintf(
			"Found %d campaign(s) with CTR above %.1f%% but conversion rate below %.1f%%. "+
				"This may indicate landing page issues or misleading ad copy.",
			len(names), th.HighCTR, th.LowConversionRate),
		Severity: models.SeverityHigh,
	}}
}

func detectHighCPA(rows []models.CampaignRow, th Thresholds) []models.PatternDetection {
	if len(rows) == 0 {
		return nil
	}
	var sum float64
	for _, r := range rows {
		sum += r.CPA
	}
	avgCPA := sum / float64(len(rows))
	limit := avgCPA * th.HighCPAMultiplier

	var names []string
	var flaggedSum float64
	for _, r := range rows {
		if r.CPA > limit {
			names = append(names, r.CampaignName)
			flaggedSum += r.CPA
		}
	}
	if len(names) == 0 {
		return nil
	}
	return []models.PatternDetection{{
		PatternType: PatternHighCPA,
		Campaigns:   names,
		Description: fmt.Sprintf(
			"Found %d campaign(s) with CPA above %.1fx the average ($%.2f). "+
				"These campaigns are spending $%.2f per acquisition.",
			len(names), th.HighCPAMultiplier, avgCPA, flaggedSum/float64(len(names))),
		Severity: models.SeverityHigh,
	}}
}

func detectLowVolume(rows []models.CampaignRow, th Thresholds) []models.PatternDetection {
	var names []string
	for _, r := range rows {
		if r.Impressions < th.MinImpressions {
			names = append(names, r.CampaignName)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return []models.PatternDetection{{
		PatternType: PatternLowVolume,
		Campaigns:   names,
		Description: printer.Sprintf(
			"Found %d campaign(s) with less than %d impressions. "+
				"Results may not be statistically significant.",
			len(names), th.MinImpressions),
		Severity: models.SeverityMedium,
	}}
}

func detectZeroConversionsHighSpend(rows []models.CampaignRow) []models.PatternDetection {
	if len(rows) == 0 {
		return nil
	}
	var sum float64
	for _, r := range rows {
		sum += r.Cost
	}
	avgCost := sum / float64(len(rows))

	var names []string
	var atRisk float64
	for _, r := range rows {
		if r.Conversions == 0 && r.Cost > avgCost {
			names = append(names, r.CampaignName)
			atRisk += r.Cost
		}
	}
	if len(names) == 0 {
		return nil
	}
	return []models.PatternDetection{{
		PatternType: PatternZeroConversionsHighSpend,
		Campaigns:   names,
		Description: printer.Sprintf(
			"Found %d campaign(s) with zero conversions but above-average spend. "+
				"Total at-risk budget: $%.2f",
			len(names), atRisk),
		Severity: models.SeverityCritical,
	}}
}

// groupByChannel rolls rows up by their exact channel string. Averages are
// unweighted per-row means. Channels come out in ascending name order.
func groupByChannel(rows []models.CampaignRow) []models.ChannelMetrics {
	agg := map[string]*models.ChannelMetrics{}
	ctrSum := map[string]float64{}
	cpaSum := map[string]float64{}

	for _, r := range rows {
		m, ok := agg[r.Channel]
		if !ok {
			m = &models.ChannelMetrics{Channel: r.Channel}
			agg[r.Channel] = m
		}
		m.TotalImpressions += r.Impressions
		m.TotalClicks += r.Clicks
		m.TotalConversions += r.Conversions
		m.TotalCost += r.Cost
		m.CampaignCount++
		ctrSum[r.Channel] += r.CTR
		cpaSum[r.Channel] += r.CPA
	}

	names := make([]string, 0, len(agg))
	for name := range agg {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]models.ChannelMetrics, 0, len(names))
	for _, name := range names {
		m := agg[name]
		m.AvgCTR = ctrSum[name] / float64(m.CampaignCount)
		m.AvgCPA = cpaSum[name] / float64(m.CampaignCount)
		out = append(out, *m)
	}
	return out
}

// rankCampaigns orders rows by efficiency (conversions per unit of cost,
// 0 when cost is 0) and returns the first and last topN names. The sort is
// stable, so ties keep insertion order; with fewer than 2*topN rows the two
// lists may overlap.
func rankCampaigns(rows []models.CampaignRow, topN int) (top, bottom []string) {
	type ranked struct {
		name       string
		efficiency float64
	}
	sorted := make([]ranked, len(rows))
	for i, r := range rows {
		eff := 0.0
		if r.Cost > 0 {
			eff = float64(r.Conversions) / r.Cost
		}
		sorted[i] = ranked{name: r.CampaignName, efficiency: eff}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].efficiency > sorted[j].efficiency })

	head := topN
	if head > len(sorted) {
		head = len(sorted)
	}
	tail := len(sorted) - topN
	if tail < 0 {
		tail = 0
	}
	for _, r := range sorted[:head] {
		top = append(top, r.name)
	}
	for _, r := range sorted[tail:] {
		bottom = append(bottom, r.name)
	}
	return top, bottom
}

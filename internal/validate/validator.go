package validate

import (
	"fmt"
	"math"
	"sort"

	"github.com/AngelCh415/campaign-insights/internal/ingest"
	"github.com/AngelCh415/campaign-insights/internal/models"
)

const (
	maxNullReports       = 5
	maxConstraintReports = 3
	maxOutlierReports    = 3
	minOutlierSamples    = 4
)

// Options carries the validation tuning values. Zero values fall back to the
// defaults at call time, so the literal Options{} is usable.
type Options struct {
	// OutlierIQRMultiplier is the k in [Q1-k*IQR, Q3+k*IQR].
	OutlierIQRMultiplier float64
	// OutlierColumns overrides the default {ctr, cpa, cost} set.
	OutlierColumns []string
}

func DefaultOptions() Options {
	return Options{OutlierIQRMultiplier: 1.5}
}

var defaultOutlierColumns = []string{"ctr", "cpa", "cost"}

// Run executes every validation rule against a canonical table. Errors are
// fatal to the batch; outlier warnings never affect validity. Null, type and
// constraint checks are skipped entirely while required columns are missing.
func Run(t models.Table, opts Options) models.ValidationResult {
	errors := checkColumns(t)
	var warnings []models.ValidationError

	if len(errors) == 0 {
		errors = append(errors, checkNulls(t)...)
		errors = append(errors, checkConstraints(t)...)
		warnings = detectOutliers(t, opts)
	}

	return models.ValidationResult{
		IsValid:       len(errors) == 0,
		Errors:        errors,
		Warnings:      warnings,
		RowsProcessed: len(t.Rows),
	}
}

func checkColumns(t models.Table) []models.ValidationError {
	var errs []models.ValidationError
	for _, col := range ingest.RequiredColumns {
		if t.Col(col) == -1 {
			errs = append(errs, models.ValidationError{
				Field:   col,
				Message: fmt.Sprintf("Required column '%s' is missing", col),
			})
		}
	}
	return errs
}

// checkNulls reports at most maxNullReports rows per column verbatim, then a
// single summarizing entry so the total count is never silently dropped.
func checkNulls(t models.Table) []models.ValidationError {
	var errs []models.ValidationError
	for _, col := range ingest.RequiredColumns {
		j := t.Col(col)
		if j == -1 {
			continue
		}
		var nullRows []int
		for i, row := range t.Rows {
			if row[j].Null {
				nullRows = append(nullRows, i)
			}
		}
		for k, i := range nullRows {
			if k == maxNullReports {
				break
			}
			errs = append(errs, models.ValidationError{
				Field:   col,
				Message: fmt.Sprintf("Null value found in column '%s'", col),
				Row:     rowNumber(i),
			})
		}
		if len(nullRows) > maxNullReports {
			errs = append(errs, models.ValidationError{
				Field:   col,
				Message: fmt.Sprintf("... and %d more null values in '%s'", len(nullRows)-maxNullReports, col),
			})
		}
	}
	return errs
}

func checkConstraints(t models.Table) []models.ValidationError {
	var errs []models.ValidationError

	for _, col := range []string{"impressions", "clicks", "conversions", "cost", "cpa"} {
		j := t.Col(col)
		if j == -1 {
			continue
		}
		reported := 0
		for i, row := range t.Rows {
			c := row[j]
			if c.Null || c.Num >= 0 {
				continue
			}
			if reported == maxConstraintReports {
				break
			}
			reported++
			errs = append(errs, models.ValidationError{
				Field:   col,
				Message: fmt.Sprintf("Negative value not allowed in '%s'", col),
				Row:     rowNumber(i),
				Value:   c.Text,
			})
		}
	}

	if j := t.Col("ctr"); j != -1 {
		reported := 0
		for i, row := range t.Rows {
			c := row[j]
			if c.Null || (c.Num >= 0 && c.Num <= 100) {
				continue
			}
			if reported == maxConstraintReports {
				break
			}
			reported++
			errs = append(errs, models.ValidationError{
				Field:   "ctr",
				Message: "CTR must be between 0 and 100%",
				Row:     rowNumber(i),
				Value:   c.Text,
			})
		}
	}

	jc, ji := t.Col("clicks"), t.Col("impressions")
	if jc != -1 && ji != -1 {
		reported := 0
		for i, row := range t.Rows {
			clicks, imps := row[jc], row[ji]
			if clicks.Null || imps.Null || clicks.Num <= imps.Num {
				continue
			}
			if reported == maxConstraintReports {
				break
			}
			reported++
			errs = append(errs, models.ValidationError{
				Field:   "clicks",
				Message: "Clicks cannot exceed impressions",
				Row:     rowNumber(i),
				Value:   fmt.Sprintf("clicks=%s, impressions=%s", formatNum(clicks.Num), formatNum(imps.Num)),
			})
		}
	}

	return errs
}

// detectOutliers applies Tukey's IQR rule per column and emits warnings, at
// most maxOutlierReports per column. Columns with fewer than four non-null
// values are skipped.
func detectOutliers(t models.Table, opts Options) []models.ValidationError {
	k := opts.OutlierIQRMultiplier
	if k == 0 {
		k = DefaultOptions().OutlierIQRMultiplier
	}
	cols := opts.OutlierColumns
	if cols == nil {
		cols = defaultOutlierColumns
	}

	var warnings []models.ValidationError
	nameIdx := t.Col("campaign_name")

	for _, col := range cols {
		j := t.Col(col)
		if j == -1 {
			continue
		}

		var rowIdx []int
		var values []float64
		for i, row := range t.Rows {
			if !row[j].Null {
				rowIdx = append(rowIdx, i)
				values = append(values, row[j].Num)
			}
		}
		if len(values) < minOutlierSamples {
			continue
		}

		q1 := quantile(values, 0.25)
		q3 := quantile(values, 0.75)
		iqr := q3 - q1
		lower := q1 - k*iqr
		upper := q3 + k*iqr

		reported := 0
		for n, v := range values {
			if v >= lower && v <= upper {
				continue
			}
			if reported == maxOutlierReports {
				break
			}
			reported++
			i := rowIdx[n]
			name := fmt.Sprintf("Row %d", i)
			if nameIdx != -1 {
				name = t.Rows[i][nameIdx].Text
			}
			warnings = append(warnings, models.ValidationError{
				Field:   col,
				Message: fmt.Sprintf("Outlier detected in '%s' for campaign '%s'", col, name),
				Row:     rowNumber(i),
				Value:   t.Rows[i][j].Text,
			})
		}
	}
	return warnings
}

// Rows converts a table that passed validation into typed canonical rows.
// Total over a valid table; malformed cells cannot reach this point.
func Rows(t models.Table) []models.CampaignRow {
	rows := make([]models.CampaignRow, 0, len(t.Rows))
	name := t.Col("campaign_name")
	imps := t.Col("impressions")
	clicks := t.Col("clicks")
	ctr := t.Col("ctr")
	conv := t.Col("conversions")
	cost := t.Col("cost")
	cpa := t.Col("cpa")
	channel := t.Col("channel")

	for _, r := range t.Rows {
		rows = append(rows, models.CampaignRow{
			CampaignName: r[name].Text,
			Impressions:  int64(math.Round(r[imps].Num)),
			Clicks:       int64(math.Round(r[clicks].Num)),
			CTR:          r[ctr].Num,
			Conversions:  int64(math.Round(r[conv].Num)),
			Cost:         r[cost].Num,
			CPA:          r[cpa].Num,
			Channel:      r[channel].Text,
		})
	}
	return rows
}

// rowNumber maps a 0-based data index to the source file line (header first).
func rowNumber(i int) int { return i + 2 }

// quantile uses linear interpolation between the two nearest ranks.
func quantile(values []float64, p float64) float64 {
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	h := p * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	if lo == len(sorted)-1 {
		return sorted[lo]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

func formatNum(v float64) string {
	return fmt.Sprintf("%g", v)
}

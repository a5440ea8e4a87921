package ingest

import (
	"log/slog"
	"math"
	"strconv"

	"github.com/AngelCh415/campaign-insights/internal/models"
)

// Format identifies the source layout of an uploaded table.
type Format string

const (
	FormatOriginal Format = "original"
	FormatMetaAds  Format = "meta_ads"
	FormatUnknown  Format = "unknown"
)

// metaAdsRequired are the columns (post normalization) that identify a Meta
// Business Suite export.
var metaAdsRequired = []string{"nome_da_campanha", "impressões", "valor_usado_(eur)"}

const (
	metaColCampaign   = "nome_da_campanha"
	metaColImpression = "impressões"
	metaColCost       = "valor_usado_(eur)"
	metaColResults    = "resultados"
	metaColCPA        = "custo_por_resultado"
	metaColCPC        = "cpc_(custo_por_clique_no_link)"
	metaColReach      = "alcance"
	metaColStatus     = "status_de_veiculação"
	metaColResultType = "tipo_de_resultado"
)

// DetectFormat classifies a table by set containment over its column names,
// checked in fixed priority order.
func DetectFormat(t models.Table) Format {
	if t.HasColumns(RequiredColumns...) {
		return FormatOriginal
	}
	if t.HasColumns(metaAdsRequired...) {
		return FormatMetaAds
	}
	return FormatUnknown
}

// DetectAndTransform classifies the table and remaps it to the canonical
// schema when needed. Unknown tables pass through unchanged; the validator
// reports their missing columns.
func DetectAndTransform(t models.Table, log *slog.Logger) (models.Table, Format) {
	format := DetectFormat(t)
	switch format {
	case FormatOriginal:
		return t, format
	case FormatMetaAds:
		log.Info("transforming meta ads export", slog.Int("rows", len(t.Rows)))
		return transformMetaAds(t), format
	default:
		log.Warn("unknown csv format", slog.Any("columns", t.Columns))
		return t, format
	}
}

// transformMetaAds derives the canonical columns from a Meta Ads export.
// Numeric source cells that fail to parse count as 0; ctr is always
// recomputed from the derived clicks, never taken from the source.
func transformMetaAds(t models.Table) models.Table {
	out := models.Table{Columns: append([]string{}, RequiredColumns...)}

	hasResults := t.Col(metaColResults) != -1
	hasCPA := t.Col(metaColCPA) != -1
	hasCPC := t.Col(metaColCPC) != -1
	hasStatus := t.Col(metaColStatus) != -1
	hasResultType := t.Col(metaColResultType) != -1
	hasReach := t.Col(metaColReach) != -1

	if hasStatus {
		out.Columns = append(out.Columns, "status")
	}
	if hasResultType {
		out.Columns = append(out.Columns, "result_type")
	}
	if hasReach {
		out.Columns = append(out.Columns, "reach")
	}

	for i := range t.Rows {
		impressions := math.Trunc(sourceNum(t, i, metaColImpression))
		cost := sourceNum(t, i, metaColCost)

		var conversions float64
		if hasResults {
			conversions = math.Trunc(sourceNum(t, i, metaColResults))
		}

		var cpa float64
		if hasCPA {
			cpa = sourceNum(t, i, metaColCPA)
		} else if conversions > 0 {
			cpa = cost / conversions
		}

		var clicks float64
		if hasCPC {
			if cpc := sourceNum(t, i, metaColCPC); cpc > 0 {
				clicks = math.Round(cost / cpc)
			}
		}

		var ctr float64
		if impressions > 0 {
			ctr = clicks / impressions * 100
		}

		row := []models.Cell{
			sourceCell(t, i, metaColCampaign),
			numCell(impressions),
			numCell(clicks),
			numCell(ctr),
			numCell(conversions),
			numCell(cost),
			numCell(cpa),
			textCell("Meta Ads"),
		}
		if hasStatus {
			row = append(row, sourceCell(t, i, metaColStatus))
		}
		if hasResultType {
			row = append(row, sourceCell(t, i, metaColResultType))
		}
		if hasReach {
			row = append(row, numCell(math.Trunc(sourceNum(t, i, metaColReach))))
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func sourceCell(t models.Table, row int, col string) models.Cell {
	if j := t.Col(col); j != -1 {
		return t.Rows[row][j]
	}
	return models.Cell{Null: true}
}

// sourceNum coerces a source cell to a number, defaulting to 0.
func sourceNum(t models.Table, row int, col string) float64 {
	c := sourceCell(t, row, col)
	if v, null := coerceNumeric(c.Text); !null {
		return v
	}
	return 0
}

func numCell(v float64) models.Cell {
	return models.Cell{Text: strconv.FormatFloat(v, 'g', -1, 64), Num: v}
}

func textCell(s string) models.Cell {
	return models.Cell{Text: s}
}

package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/AngelCh415/campaign-insights/internal/models"
)

// RequiredColumns is the canonical schema every source format is mapped into.
var RequiredColumns = []string{
	"campaign_name",
	"impressions",
	"clicks",
	"ctr",
	"conversions",
	"cost",
	"cpa",
	"channel",
}

var numericColumns = []string{"impressions", "clicks", "ctr", "conversions", "cost", "cpa"}

var ErrEmptyFile = errors.New("CSV file is empty")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decoders are tried in fixed order; the first that decodes wins.
var decoders = []struct {
	name   string
	decode func([]byte) (string, error)
}{
	{"utf-8", decodeUTF8},
	{"latin-1", charmapDecoder(charmap.ISO8859_1)},
	{"cp1252", charmapDecoder(charmap.Windows1252)},
}

func decodeUTF8(b []byte) (string, error) {
	b = bytes.TrimPrefix(b, utf8BOM)
	if !utf8.Valid(b) {
		return "", errors.New("invalid utf-8")
	}
	return string(b), nil
}

func charmapDecoder(cm *charmap.Charmap) func([]byte) (string, error) {
	return func(b []byte) (string, error) {
		out, err := cm.NewDecoder().Bytes(b)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}

// Load parses raw CSV bytes into a canonical table. Column names are trimmed,
// lower-cased and space-to-underscore normalized before format detection; the
// detected format's transform is applied when needed. Load never rejects a
// table for schema reasons, only for parse failures.
func Load(data []byte, log *slog.Logger) (models.Table, Format, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Table{}, FormatUnknown, ErrEmptyFile
	}

	var text, encName string
	for _, d := range decoders {
		if s, err := d.decode(data); err == nil {
			text, encName = s, d.name
			break
		}
	}
	if encName == "" {
		return models.Table{}, FormatUnknown, errors.New("could not decode CSV file with any supported encoding")
	}

	r := csv.NewReader(strings.NewReader(text))
	records, err := r.ReadAll()
	if err != nil {
		return models.Table{}, FormatUnknown, fmt.Errorf("invalid CSV format: %w", err)
	}
	if len(records) == 0 {
		return models.Table{}, FormatUnknown, ErrEmptyFile
	}

	table := buildTable(records)
	log.Info("csv loaded",
		slog.String("encoding", encName),
		slog.Int("rows", len(table.Rows)),
		slog.Int("columns", len(table.Columns)))

	table, format := DetectAndTransform(table, log)
	return table, format, nil
}

func buildTable(records [][]string) models.Table {
	header := records[0]
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = NormalizeColumn(h)
	}
	t := models.Table{Columns: cols, Rows: make([][]models.Cell, 0, len(records)-1)}

	numeric := make(map[int]bool, len(cols))
	for i, c := range cols {
		if isNumericColumn(c) {
			numeric[i] = true
		}
	}

	for _, rec := range records[1:] {
		row := make([]models.Cell, len(cols))
		for i := range cols {
			var raw string
			if i < len(rec) {
				raw = rec[i]
			}
			cell := models.Cell{Text: raw}
			if numeric[i] {
				cell.Num, cell.Null = coerceNumeric(raw)
			} else {
				cell.Null = strings.TrimSpace(raw) == ""
			}
			row[i] = cell
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// NormalizeColumn trims, lower-cases and replaces spaces with underscores.
func NormalizeColumn(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func isNumericColumn(name string) bool {
	for _, c := range numericColumns {
		if c == name {
			return true
		}
	}
	return false
}

// coerceNumeric parses a cell as a finite number; the second return reports
// null (empty or unparseable).
func coerceNumeric(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, true
	}
	return f, false
}

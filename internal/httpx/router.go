package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AngelCh415/campaign-insights/internal/config"
	"github.com/AngelCh415/campaign-insights/internal/ingest"
	"github.com/AngelCh415/campaign-insights/internal/insight"
	"github.com/AngelCh415/campaign-insights/internal/metrics"
	"github.com/AngelCh415/campaign-insights/internal/utils"
	"github.com/AngelCh415/campaign-insights/internal/validate"
)

const maxUploadBytes = 16 << 20

func NewRouter(log *slog.Logger, cfg config.Config, svc *insight.Service) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))
	mux.Use(Instrument)

	valOpts := validate.Options{OutlierIQRMultiplier: cfg.OutlierIQRMultiplier}
	thresholds := metrics.Thresholds{
		HighCTR:           cfg.HighCTRThreshold,
		LowConversionRate: cfg.LowConversionRateThreshold,
		HighCPAMultiplier: cfg.HighCPAMultiplier,
		MinImpressions:    cfg.MinImpressionsThreshold,
	}

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":         "healthy",
			"version":        config.AppVersion,
			"timestamp":      time.Now().UTC().Format(time.RFC3339),
			"llm_provider":   cfg.LLMProvider,
			"llm_configured": cfg.LLMConfigured(),
		})
	})

	mux.Method(http.MethodGet, "/metrics", promhttp.Handler())

	mux.Post("/analyze-campaign", func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		data, filename, partType, err := readUpload(r)
		if err != nil {
			http.Error(w, "could not read upload: "+err.Error(), http.StatusUnprocessableEntity)
			return
		}
		if !looksLikeCSV(filename, partType) {
			http.Error(w, "File must be a CSV", http.StatusUnprocessableEntity)
			return
		}

		table, format, err := ingest.Load(data, log)
		if err != nil {
			http.Error(w, "Invalid CSV file: "+err.Error(), http.StatusUnprocessableEntity)
			return
		}
		log.Info("csv format detected", slog.String("format", string(format)))

		result := validate.Run(table, valOpts)
		if !result.IsValid {
			log.Warn("validation failed", slog.Int("errors", len(result.Errors)))
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"message":           "Validation failed",
				"validation_result": result,
			})
			return
		}
		if len(result.Warnings) > 0 {
			log.Info("validation warnings", slog.Int("warnings", len(result.Warnings)))
		}

		analysis := metrics.Analyze(validate.Rows(table), thresholds)
		for _, p := range analysis.PatternsDetected {
			patternsDetected.WithLabelValues(p.PatternType).Add(float64(len(p.Campaigns)))
		}

		insights := svc.Generate(r.Context(), analysis)
		observeAnalysis(start)

		log.Info("analysis complete",
			slog.Int("campaigns", analysis.TotalCampaigns),
			slog.Int("issues", len(insights.KeyIssues)),
			slog.Int("recommendations", len(insights.Recommendations)))

		writeJSON(w, http.StatusOK, insights)
	})

	return mux
}

// readUpload accepts either a multipart form with a "file" field or a raw
// request body. It returns the bytes, the upload filename (empty for raw
// bodies) and the content type declared for the payload.
func readUpload(r *http.Request) ([]byte, string, string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			return nil, "", "", err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, "", "", err
		}
		return data, hdr.Filename, hdr.Header.Get("Content-Type"), nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, "", "", err
	}
	if len(data) == 0 {
		return nil, "", "", errors.New("empty request body")
	}
	return data, "", ct, nil
}

var csvContentTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
}

// looksLikeCSV gates named uploads on extension or declared content type.
// Raw bodies (no filename) pass through; the parser is the real judge.
func looksLikeCSV(filename, contentType string) bool {
	if filename == "" {
		return true
	}
	if strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return true
	}
	return csvContentTypes[strings.Split(contentType, ";")[0]]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}

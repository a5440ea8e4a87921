package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/campaign-insights/internal/config"
	"github.com/AngelCh415/campaign-insights/internal/insight"
	"github.com/AngelCh415/campaign-insights/internal/models"
)

const validCSV = `campaign_name,impressions,clicks,conversions,ctr,cost,cpa,channel
Brand A,10000,200,20,2.0,100,5,Google Ads
Brand B,20000,400,40,2.0,200,5,Google Ads
Brand C,15000,300,30,2.0,150,5,Meta Ads
Brand D,12000,240,24,2.0,120,5,Meta Ads
Dead E,30000,600,0,2.0,500,0,Email
`

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{
		LLMProvider:                config.ProviderMock,
		OutlierIQRMultiplier:       1.5,
		MinImpressionsThreshold:    1000,
		HighCTRThreshold:           5.0,
		LowConversionRateThreshold: 1.0,
		HighCPAMultiplier:          2.0,
	}
	svc := insight.NewService(insight.NewGenerator(cfg), log)
	return NewRouter(log, cfg, svc)
}

func multipartBody(t *testing.T, filename, contents string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(contents))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestAnalyzeCampaignHappyPath(t *testing.T) {
	body, ct := multipartBody(t, "campaigns.csv", validCSV)
	req := httptest.NewRequest(http.MethodPost, "/analyze-campaign", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	testRouter(t).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var resp models.InsightResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.MetricsSummary.TotalCampaigns)
	assert.Equal(t, 1070.0, resp.MetricsSummary.TotalSpend)
	assert.NotEmpty(t, resp.ExecutiveSummary)

	require.Len(t, resp.MetricsSummary.PatternsDetected, 1)
	p := resp.MetricsSummary.PatternsDetected[0]
	assert.Equal(t, "zero_conversions_high_spend", p.PatternType)
	assert.Equal(t, models.SeverityCritical, p.Severity)
	assert.Equal(t, []string{"Dead E"}, p.Campaigns)
}

func TestAnalyzeCampaignRawBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/analyze-campaign", strings.NewReader(validCSV))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()

	testRouter(t).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyzeCampaignMissingColumn(t *testing.T) {
	csv := "campaign_name,impressions,clicks,conversions,ctr,cpa,channel\nA,100,10,1,10,1,Email\n"
	body, ct := multipartBody(t, "campaigns.csv", csv)
	req := httptest.NewRequest(http.MethodPost, "/analyze-campaign", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	testRouter(t).ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Message          string                  `json:"message"`
		ValidationResult models.ValidationResult `json:"validation_result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Validation failed", resp.Message)
	require.Len(t, resp.ValidationResult.Errors, 1)
	assert.Equal(t, "cost", resp.ValidationResult.Errors[0].Field)
}

func TestAnalyzeCampaignRejectsNonCSVFilename(t *testing.T) {
	body, ct := multipartBody(t, "report.pdf", validCSV)
	req := httptest.NewRequest(http.MethodPost, "/analyze-campaign", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	testRouter(t).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "File must be a CSV")
}

func TestAnalyzeCampaignRaggedCSV(t *testing.T) {
	csv := "campaign_name,impressions,clicks,conversions,ctr,cost,cpa,channel\nA,1,2\n"
	body, ct := multipartBody(t, "bad.csv", csv)
	req := httptest.NewRequest(http.MethodPost, "/analyze-campaign", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	testRouter(t).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAnalyzeCampaignEmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/analyze-campaign", strings.NewReader(""))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()

	testRouter(t).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	testRouter(t).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, config.AppVersion, resp["version"])
	assert.Equal(t, config.ProviderMock, resp["llm_provider"])
	assert.Equal(t, true, resp["llm_configured"])
}

func TestLivenessAndReadiness(t *testing.T) {
	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		testRouter(t).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestLooksLikeCSV(t *testing.T) {
	assert.True(t, looksLikeCSV("data.csv", ""))
	assert.True(t, looksLikeCSV("DATA.CSV", ""))
	assert.True(t, looksLikeCSV("", "application/octet-stream"))
	assert.True(t, looksLikeCSV("export.txt", "text/csv; charset=utf-8"))
	assert.False(t, looksLikeCSV("report.pdf", "application/pdf"))
}

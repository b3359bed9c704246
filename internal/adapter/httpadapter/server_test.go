package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/couchcryptid/roof-spec-etl/internal/adapter/httpadapter"
	"github.com/couchcryptid/roof-spec-etl/internal/domain"
	"github.com/couchcryptid/roof-spec-etl/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type failingAnalyzer struct{}

func (failingAnalyzer) Analyze(context.Context, string, domain.ProjectRequest) (domain.Analysis, error) {
	return domain.Analysis{}, errors.New("catalog unavailable")
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(readyErr error) *httpadapter.Server {
	matcher := domain.NewMatcher(domain.DefaultCatalog(), discard())
	analyzer := pipeline.NewTransformer(matcher, nil, discard(), nil)
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, analyzer, 1024, discard())
}

func postAnalysis(srv http.Handler, contentType, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/analyses", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(fmt.Errorf("pipeline has not loaded any analyses yet"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestAnalyze_JSONRequest(t *testing.T) {
	srv := newTestServer(nil)

	rec := postAnalysis(srv, "application/json", `{"id":"req-7","description":"GAF TPO 30ft Dallas TX"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var a domain.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	assert.Equal(t, "req-7", a.RequestID)
	assert.Equal(t, domain.AnalysisID("GAF TPO 30ft Dallas TX"), a.ID)
	assert.Equal(t, "TX", a.Requirements.Location.State)
	assert.Equal(t, domain.TierICCES, a.RequiredApproval.Tier)
	require.Len(t, a.Matches, 1)
	assert.Equal(t, domain.GAF, a.Matches[0].ManufacturerKey)
}

func TestAnalyze_PlainTextRequest(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/analyses", strings.NewReader("Carlisle TPO 40ft Fort Lauderdale FL with NOA"))
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("X-Request-ID", "fl-1")

	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var a domain.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	assert.Equal(t, "fl-1", a.RequestID)
	require.NotNil(t, a.Requirements.Location.Region)
	assert.True(t, a.Requirements.Location.Region.HVHZ)
	assert.Equal(t, domain.TierMiamiDade, a.RequiredApproval.Tier)
}

func TestAnalyze_NoContentType(t *testing.T) {
	srv := newTestServer(nil)

	rec := postAnalysis(srv, "", "GAF TPO 30ft Dallas TX")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyze_EmptyDescription(t *testing.T) {
	srv := newTestServer(nil)

	rec := postAnalysis(srv, "application/json", `{"id":"req-1","description":"   "}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "empty description", body["error"])
	assert.Equal(t, "parse", body["stage"])
	assert.Equal(t, "description", body["field"])
}

func TestAnalyze_MalformedJSON(t *testing.T) {
	srv := newTestServer(nil)

	rec := postAnalysis(srv, "application/json", `{"description":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_InvalidUTF8(t *testing.T) {
	srv := newTestServer(nil)

	rec := postAnalysis(srv, "text/plain", "GAF TPO \xff\xfe Dallas TX")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "extract", body["stage"])
}

func TestAnalyze_TooLarge(t *testing.T) {
	srv := newTestServer(nil)

	rec := postAnalysis(srv, "text/plain", strings.Repeat("GAF TPO ", 200))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestAnalyze_UnsupportedMediaType(t *testing.T) {
	srv := newTestServer(nil)

	rec := postAnalysis(srv, "application/xml", "<project/>")

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestAnalyze_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/analyses", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAnalyze_AnalyzerFailure(t *testing.T) {
	srv := httpadapter.NewServer(":0", &mockReadiness{}, failingAnalyzer{}, 1024, discard())

	rec := postAnalysis(srv, "text/plain", "GAF TPO 30ft Dallas TX")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "catalog unavailable")
}

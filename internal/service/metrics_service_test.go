package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceExposesDocumentSeries(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/evaluations/:id/certificate.pdf", http.StatusOK, 40*time.Millisecond)
	m.ObserveRender("training_certificate", 120*time.Millisecond)
	m.RecordRenderFailure("assignment_order", "invalid")
	m.RecordAssetOmitted("assignment_order", "logo")
	m.RecordJob("FINISHED")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	for _, series := range []string{
		"http_requests_total",
		`document_render_duration_seconds_count{kind="training_certificate"} 1`,
		`document_render_failures_total{kind="assignment_order",reason="invalid"} 1`,
		`document_assets_omitted_total{asset="logo",kind="assignment_order"} 1`,
		`document_jobs_processed_total{status="FINISHED"} 1`,
	} {
		assert.True(t, strings.Contains(body, series), series)
	}
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveRender("x", time.Second)
	m.RecordCacheOperation(true, time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()

	m.ObserveRequest("text", "gemini", "success", 1200*time.Millisecond)
	m.ObserveRequest("text", "gemini", "success", time.Second)
	m.ObserveRequest("image", "gpt", "failed", time.Second)
	m.ObserveProviderCall("gemini", "gemini-flash-latest", time.Second, nil)
	m.ObserveProviderCall("gemini", "gemini-flash-latest", time.Second, errors.New("boom"))
	m.ObserveAcquisition("pdf", 0.1, nil)
	m.ObserveAcquisition("image", 0, errors.New("ocr failed"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestOps.WithLabelValues("text", "gemini", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestOps.WithLabelValues("image", "gpt", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.providerOps.WithLabelValues("gemini", "gemini-flash-latest", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.acquisitionOps.WithLabelValues("image", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ocrConfidence))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveRequest("url", "gpt", "degraded_success", time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `invoice_ocr_extraction_request_ops_total{engine="gpt",outcome="degraded_success",source="url"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

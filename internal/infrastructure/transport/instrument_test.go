package transport

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcgenerator/app/usecase"
	"mcgenerator/internal/infrastructure/machineconfig"
	"mcgenerator/internal/infrastructure/validator"
)

func TestInstrument_LabelsByRoute(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := usecase.NewManifestService(machineconfig.NewRenderer(), validator.NewMachineConfigAnalyzer(), logger)
	h, err := NewGeneratorHandler(svc, Options{DefaultHostCount: 3, MaxHostsPerRole: 10}, logger, prometheus.NewRegistry())
	require.NoError(t, err)

	r := mux.NewRouter()
	h.RegisterRoutes(r)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(h.reqCount.WithLabelValues(http.MethodGet, "/api/v1/health")))
	assert.Equal(t, 0.0, testutil.ToFloat64(h.errCount.WithLabelValues(http.MethodGet, "/api/v1/health", "200")))

	rec := postForm(t, r, url.Values{"generate": {"1"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.reqCount.WithLabelValues(http.MethodPost, "/")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.errCount.WithLabelValues(http.MethodPost, "/", "400")))
}

func TestStatusWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec}
	assert.Equal(t, http.StatusOK, sw.Status())

	_, err := sw.Write([]byte("x"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, sw.Status())

	rec = httptest.NewRecorder()
	sw = &statusWriter{ResponseWriter: rec}
	sw.WriteHeader(http.StatusTeapot)
	sw.WriteHeader(http.StatusOK)
	assert.Equal(t, http.StatusTeapot, sw.Status())
}

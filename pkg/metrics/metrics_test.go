package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/filebank/pkg/content"
)

func TestS3Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newS3Metrics(reg)

	m.ObserveOperation("PutObject", 3*time.Millisecond, nil)
	m.ObserveOperation("PutObject", time.Millisecond, errors.New("boom"))
	m.ObserveOperation("CopyObject", time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("PutObject", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("PutObject", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.operationDuration))
}

func TestServiceMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newServiceMetrics(reg)

	m.ObserveOperation("move", 10*time.Millisecond, nil)
	m.RecordMoveInconsistency(content.TypeDirectory)
	m.RecordMoveInconsistency(content.TypeDirectory)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("move", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.moveInconsistences.WithLabelValues(string(content.TypeDirectory))))
}

func TestNilReceivers(t *testing.T) {
	var s *s3Metrics
	var v *serviceMetrics
	var h *HTTPMetrics

	assert.NotPanics(t, func() {
		s.ObserveOperation("GetObject", time.Millisecond, nil)
		v.ObserveOperation("list", time.Millisecond, nil)
		v.RecordMoveInconsistency(content.TypeFile)
	})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.NotNil(t, h.Middleware(next))
}

func TestHTTPMetricsUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newHTTPMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/v1/fs/*", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, p := range []string{"/api/v1/fs/a", "/api/v1/fs/b/c.txt"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/api/v1/fs/*", "404")))
}

func TestHandlerDisabled(t *testing.T) {
	if IsEnabled() {
		t.Skip("registry already initialized")
	}
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Nil(t, NewS3Metrics())
	assert.Nil(t, NewServiceMetrics())
	assert.Nil(t, NewHTTPMetrics())
}

package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/swamyhotfoods/shopfront/internal/adapter/metrics"
	"github.com/swamyhotfoods/shopfront/internal/platform/config"
	"github.com/swamyhotfoods/shopfront/internal/platform/correlation"
)

func TestRoutes_MetricsEndpoint(t *testing.T) {
	reg := metrics.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(reg)
	srv := newTestServer(t, func(_ *config.Config, d *Dependencies) {
		d.MetricsHandler = metrics.Handler(reg)
		d.HTTPMetrics = httpMetrics
	})

	serve(srv, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `shopfront_http_requests_total{method="GET",route="/api/status",status_code="200"} 1`)
}

func TestRoutes_NoMetricsHandler(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoutes_WebsocketRouteDelegates(t *testing.T) {
	called := false
	srv := newTestServer(t, func(_ *config.Config, d *Dependencies) {
		d.WebsocketHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			called = true
			w.WriteHeader(http.StatusTeapot)
		})
	})

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/ws/status", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestRoutes_ResponsesCarryRequestID(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, rec.Header().Get(correlation.Header))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

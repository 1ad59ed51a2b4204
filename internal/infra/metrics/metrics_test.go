package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCountsEvents(t *testing.T) {
	m := New()
	m.Observe("cart_add")
	m.Observe("cart_add")
	m.Observe("order_placed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Events.WithLabelValues("cart_add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Events.WithLabelValues("order_placed")))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/P1", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/products/{id}", "404")))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "storefront_http_requests_total")
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.Observe("x")
	m.StreamOpened()
	m.StreamClosed()
}

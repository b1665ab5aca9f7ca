package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAuthAttempt(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.AuthAttempt("login", "success")
	m.AuthAttempt("login", "success")
	m.AuthAttempt("login", "invalid_credentials")

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.authAttempts.WithLabelValues("login", "success")), 0.001)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.authAttempts.WithLabelValues("login", "invalid_credentials")), 0.001)
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Delete("/api/cards/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/cards/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	got := testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/cards/{id}", http.MethodDelete, "404"))
	assert.InDelta(t, 2.0, got, 0.001)
}

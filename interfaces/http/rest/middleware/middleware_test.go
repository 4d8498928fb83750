package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	pkgerrors "workflowbuilder/pkg/errors"
)

func TestRateLimiter_Allow(t *testing.T) {
	l := NewRateLimiter(1, 2)
	now := time.Unix(1000, 0)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"), "burst exhausted")
	assert.True(t, l.Allow("b"), "clients are limited independently")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("a"), "one token refilled")
}

func TestRateLimiter_Cleanup(t *testing.T) {
	l := NewRateLimiter(1, 1)
	now := time.Unix(1000, 0)
	l.now = func() time.Time { return now }
	l.Allow("a")

	now = now.Add(time.Hour)
	l.Allow("b")
	assert.Equal(t, 1, l.Cleanup())
}

func TestRateLimiter_Middleware(t *testing.T) {
	l := NewRateLimiter(0.001, 1)
	h := l.Middleware(pkgerrors.NewErrorHandler(zap.NewNop(), false))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

type observed struct {
	route  string
	status int
}

type recorder struct{ got []observed }

func (r *recorder) ObserveHTTP(_, route string, status int, _ time.Duration) {
	r.got = append(r.got, observed{route: route, status: status})
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	rec := &recorder{}
	router := chi.NewRouter()
	router.Use(Metrics(rec))
	router.Use(Logger(zap.NewNop()))
	router.Get("/sessions/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/sessions/abc", nil))

	assert.Equal(t, []observed{{route: "/sessions/{sessionID}", status: http.StatusAccepted}}, rec.got)
}

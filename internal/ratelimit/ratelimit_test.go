package ratelimit_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gatehouse/orderaudit/internal/ratelimit"
)

func TestMiddlewareEnforcesLimit(t *testing.T) {
	l, err := ratelimit.New(nil, "2-H", "test")
	require.NoError(t, err)

	handler := ratelimit.Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
}

func TestNewRejectsMalformedRate(t *testing.T) {
	_, err := ratelimit.New(nil, "whenever", "test")
	require.Error(t, err)
}

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dom/design-system-studio/internal/api/middleware"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := middleware.NewRateLimiter(60, 3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"), "request %d within burst", i)
	}
	assert.False(t, rl.Allow("1.2.3.4"), "burst exhausted")

	// Budgets are per key.
	assert.True(t, rl.Allow("5.6.7.8"))
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := middleware.NewRateLimiter(60, 2)
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:54321"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do().Code)
	assert.Equal(t, http.StatusOK, do().Code)

	throttled := do()
	assert.Equal(t, http.StatusTooManyRequests, throttled.Code)
	assert.NotEmpty(t, throttled.Header().Get("Retry-After"))
}

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/weathervibe/weathervibe/internal/api/middleware"
)

func sendFrom(handler http.Handler, remoteAddr string, decorate func(*http.Request) *http.Request) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/weather/current", http.NoBody)
	req.RemoteAddr = remoteAddr
	if decorate != nil {
		req = decorate(req)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitByIP_AllowsWithinLimit(t *testing.T) {
	handler := middleware.RateLimitByIP(middleware.RateLimitConfig{RequestLimit: 5, WindowLength: time.Minute})(okHandler())

	for i := 0; i < 5; i++ {
		rec := sendFrom(handler, "192.168.1.1:12345", nil)
		assert.Equal(t, http.StatusOK, rec.Code, "request %d should be allowed", i+1)
	}
}

func TestRateLimitByIP_BlocksOverLimit(t *testing.T) {
	handler := middleware.RateLimitByIP(middleware.RateLimitConfig{RequestLimit: 3, WindowLength: 2 * time.Minute})(okHandler())

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, sendFrom(handler, "10.0.0.1:12345", nil).Code)
	}

	rec := sendFrom(handler, "10.0.0.1:12345", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rate limit exceeded")
	assert.Equal(t, "120", rec.Header().Get("Retry-After"))
}

func TestRateLimitByIP_DifferentIPsHaveSeparateLimits(t *testing.T) {
	handler := middleware.RateLimitByIP(middleware.RateLimitConfig{RequestLimit: 2, WindowLength: time.Minute})(okHandler())

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, sendFrom(handler, "172.16.0.1:12345", nil).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, sendFrom(handler, "172.16.0.1:12345", nil).Code)
	assert.Equal(t, http.StatusOK, sendFrom(handler, "172.16.0.2:12345", nil).Code)
}

func TestRateLimitByUser_KeysOnUserAcrossIPs(t *testing.T) {
	handler := middleware.RateLimitByUser(middleware.RateLimitConfig{RequestLimit: 2, WindowLength: time.Minute})(okHandler())

	asUser := func(id string) func(*http.Request) *http.Request {
		return func(r *http.Request) *http.Request {
			return r.WithContext(middleware.WithUserID(r.Context(), id))
		}
	}

	assert.Equal(t, http.StatusOK, sendFrom(handler, "192.168.1.1:1000", asUser("usr_a")).Code)
	assert.Equal(t, http.StatusOK, sendFrom(handler, "192.168.1.2:1000", asUser("usr_a")).Code)
	// Third request from yet another IP is still the same user.
	assert.Equal(t, http.StatusTooManyRequests, sendFrom(handler, "192.168.1.3:1000", asUser("usr_a")).Code)

	assert.Equal(t, http.StatusOK, sendFrom(handler, "192.168.1.3:1000", asUser("usr_b")).Code)
}

func TestRateLimitByUser_FallsBackToIP(t *testing.T) {
	handler := middleware.RateLimitByUser(middleware.RateLimitConfig{RequestLimit: 2, WindowLength: time.Minute})(okHandler())

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, sendFrom(handler, "198.51.100.1:1", nil).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, sendFrom(handler, "198.51.100.1:1", nil).Code)
	assert.Equal(t, http.StatusOK, sendFrom(handler, "198.51.100.2:1", nil).Code)
}

func TestRateLimitExceededResponse_Format(t *testing.T) {
	handler := middleware.RequestID(
		middleware.RateLimitByIP(middleware.RateLimitConfig{RequestLimit: 1, WindowLength: time.Minute})(okHandler()),
	)

	assert.Equal(t, http.StatusOK, sendFrom(handler, "203.0.113.1:12345", nil).Code)

	rec := sendFrom(handler, "203.0.113.1:12345", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "too-many-requests")
	assert.Contains(t, body, "Rate limit exceeded")
	assert.Contains(t, body, "/v1/weather/current")
}

func TestDefaultRateLimitConfigs(t *testing.T) {
	assert.Equal(t, 10, middleware.AlertRateLimit.RequestLimit)
	assert.Equal(t, 30, middleware.ChatRateLimit.RequestLimit)
	assert.Equal(t, 100, middleware.StandardRateLimit.RequestLimit)
	for _, cfg := range []middleware.RateLimitConfig{middleware.AlertRateLimit, middleware.ChatRateLimit, middleware.StandardRateLimit} {
		assert.Equal(t, time.Minute, cfg.WindowLength)
	}
}

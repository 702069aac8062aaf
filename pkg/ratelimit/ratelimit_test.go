package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestGetRateLimitType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want RateLimitType
	}{
		{"/health", RateLimitTypeHealth},
		{"/api/v1/admin/buses/:id/layout", RateLimitTypeAdmin},
		{"/api/v1/auth/login", RateLimitTypeAuth},
		{"/api/v1/selections/:id/toggle", RateLimitTypeSelection},
		{"/api/v1/selections/:id/checkout", RateLimitTypeBookingCritical},
		{"/api/v1/bookings/checkout", RateLimitTypeBookingCritical},
		{"/api/v1/bookings/me", RateLimitTypeBooking},
		{"/api/v1/selections/:id", RateLimitTypeBooking},
		{"/api/v1/schedules/:id/seat-map", RateLimitTypePublic},
		{"/api/v1/routes", RateLimitTypePublic},
		{"/somewhere", RateLimitTypeDefault},
	}
	for _, test := range tests {
		if got := getRateLimitType(test.path); got != test.want {
			t.Errorf("getRateLimitType(%q) = %s, want %s", test.path, got, test.want)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded for", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:5555", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.4"}, "10.0.0.2:5555", "198.51.100.4"},
		{"garbage header", map[string]string{"X-Forwarded-For": "not-an-ip"}, "10.0.0.2:5555", "10.0.0.2"},
		{"remote addr", nil, "192.0.2.9:1234", "192.0.2.9"},
	}
	for _, test := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.RemoteAddr = test.remote
		for k, v := range test.headers {
			c.Request.Header.Set(k, v)
		}
		if got := getClientIP(c); got != test.want {
			t.Errorf("%s: getClientIP = %q, want %q", test.name, got, test.want)
		}
	}
}

func TestDisabledLimiterAllowsWithoutRedis(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(nil, &Config{Enabled: false, WindowDuration: time.Minute, SelectionRequests: 120})
	result, err := limiter.IsAllowed(context.Background(), "192.0.2.1", RateLimitTypeSelection)
	if err != nil {
		t.Fatalf("IsAllowed: %v", err)
	}
	if !result.Allowed || result.Limit != 120 || result.Remaining != 120 {
		t.Errorf("result = %+v", result)
	}
}

func TestWhitelistedIPBypassesRedis(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(nil, &Config{Enabled: true, WindowDuration: time.Minute, AdminRequests: 5, WhitelistedIPs: []string{"10.1.1.1"}})
	result, err := limiter.IsAllowed(context.Background(), "10.1.1.1", RateLimitTypeAdmin)
	if err != nil {
		t.Fatalf("IsAllowed: %v", err)
	}
	if !result.Allowed || result.Limit != 5 {
		t.Errorf("result = %+v", result)
	}
}

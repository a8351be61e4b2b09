package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// TestRateLimiter_RefillsPerInterval verifies the bucket empties and refills.
func TestRateLimiter_RefillsPerInterval(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Second)
	rl.now = func() time.Time { return now }

	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("first two requests should be allowed")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("third request within the interval should be rejected")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other clients have their own bucket")
	}

	now = now.Add(time.Second)
	if !rl.Allow("1.2.3.4") {
		t.Error("request after refill should be allowed")
	}
}

// TestRateLimiter_Sweep verifies idle clients are forgotten.
func TestRateLimiter_Sweep(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, time.Second)
	rl.now = func() time.Time { return now }

	rl.Allow("old")
	now = now.Add(10 * time.Minute)
	rl.Allow("new")

	if removed := rl.Sweep(5 * time.Minute); removed != 1 {
		t.Errorf("Sweep removed %d, want 1", removed)
	}
}

// TestRateLimit_IgnoresPort verifies clients are keyed by host only.
func TestRateLimit_IgnoresPort(t *testing.T) {
	handler := RateLimit(NewRateLimiter(1, time.Hour))(okHandler)

	for i, addr := range []string{"10.0.0.1:5000", "10.0.0.1:5001"} {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		want := http.StatusOK
		if i == 1 {
			want = http.StatusTooManyRequests
		}
		if rr.Code != want {
			t.Errorf("request %d from %s: status = %d, want %d", i, addr, rr.Code, want)
		}
	}
}

// TestSecurityHeaders verifies the API hardening headers are set.
func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	for _, h := range []string{"Content-Security-Policy", "X-Frame-Options", "X-Content-Type-Options", "Referrer-Policy"} {
		if rr.Header().Get(h) == "" {
			t.Errorf("missing header %s", h)
		}
	}
}

// TestCSRF_ExemptsJSON verifies JSON posts pass and form posts without a token are rejected.
func TestCSRF_ExemptsJSON(t *testing.T) {
	handler := CSRF(make([]byte, 32), CSRFOptions{})(okHandler)

	jsonReq := httptest.NewRequest("POST", "/api/attendance", strings.NewReader(`{}`))
	jsonReq.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, jsonReq)
	if rr.Code != http.StatusOK {
		t.Errorf("JSON post status = %d, want 200", rr.Code)
	}

	formReq := httptest.NewRequest("POST", "/api/attendance", strings.NewReader("a=b"))
	formReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, formReq)
	if rr.Code != http.StatusForbidden {
		t.Errorf("form post status = %d, want 403", rr.Code)
	}
}

// TestRequireToken verifies bearer token checks.
func TestRequireToken(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{"disabled", "", "", http.StatusOK},
		{"valid", "s3cret", "Bearer s3cret", http.StatusOK},
		{"missing", "s3cret", "", http.StatusUnauthorized},
		{"wrong", "s3cret", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/admin/digest", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			RequireToken(tt.token)(okHandler).ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

// TestChain_Order verifies the last middleware runs first.
func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	Chain(okHandler, mark("inner"), mark("outer")).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("order = %v, want [outer inner]", order)
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 10; i++ {
		if !rl.Allow("192.168.1.20", 10, time.Minute) {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if rl.Allow("192.168.1.20", 10, time.Minute) {
		t.Error("attempt over the limit should be denied")
	}

	// Other clients keep their own budget
	if !rl.Allow("192.168.1.21", 10, time.Minute) {
		t.Error("different key should be allowed")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 3; i++ {
		rl.Allow("kiosk", 3, 10*time.Millisecond)
	}
	if rl.Allow("kiosk", 3, 10*time.Millisecond) {
		t.Error("should be blocked within the window")
	}

	time.Sleep(15 * time.Millisecond)

	if !rl.Allow("kiosk", 3, 10*time.Millisecond) {
		t.Error("should be allowed once the window has passed")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter()

	rl.Allow("stale", 5, 10*time.Millisecond)
	time.Sleep(15 * time.Millisecond)
	rl.Allow("fresh", 5, time.Minute)

	rl.Cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.buckets["stale"]; ok {
		t.Error("stale bucket should have been dropped")
	}
	if _, ok := rl.buckets["fresh"]; !ok {
		t.Error("fresh bucket should survive cleanup")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter()

	handler := RateLimit(rl, RealIP, 2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/api/auth/login", nil)
		req.RemoteAddr = "192.168.1.30:51000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("attempt %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}

	req := httptest.NewRequest("POST", "/api/auth/login", nil)
	req.RemoteAddr = "192.168.1.30:51001"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("attempt over the limit: status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
}

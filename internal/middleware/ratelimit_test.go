package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*RateLimiter, *time.Time) {
	t.Helper()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(RateLimitConfig{Limit: limit, Window: window})
	rl.now = func() time.Time { return now }
	t.Cleanup(rl.Stop)
	return rl, &now
}

// ============================================================================
// NewRateLimiter Tests (Configuration)
// ============================================================================

func TestNewRateLimiter_DefaultConfig(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{})
	defer rl.Stop()

	if rl.limit != 10 {
		t.Errorf("expected default limit 10, got %d", rl.limit)
	}
	if rl.window != time.Minute {
		t.Errorf("expected default window 1m, got %v", rl.window)
	}
}

func TestRateLimiter_StopTwice(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{})
	rl.Stop()
	rl.Stop()
}

// ============================================================================
// Allow() Tests
// ============================================================================

func TestAllow_CountsDownToLimit(t *testing.T) {
	t.Parallel()
	rl, _ := newTestLimiter(t, 3, time.Minute)

	for i := 2; i >= 0; i-- {
		allowed, remaining, _ := rl.Allow("10.0.0.1")
		if !allowed {
			t.Fatalf("attempt should be allowed with %d remaining", i)
		}
		if remaining != i {
			t.Errorf("expected remaining %d, got %d", i, remaining)
		}
	}

	allowed, remaining, _ := rl.Allow("10.0.0.1")
	if allowed || remaining != 0 {
		t.Errorf("expected rejection, got allowed=%v remaining=%d", allowed, remaining)
	}
}

func TestAllow_WindowResets(t *testing.T) {
	t.Parallel()
	rl, now := newTestLimiter(t, 1, time.Minute)

	rl.Allow("k")
	if allowed, _, _ := rl.Allow("k"); allowed {
		t.Fatal("second attempt in window should be rejected")
	}

	*now = now.Add(time.Minute)
	if allowed, _, _ := rl.Allow("k"); !allowed {
		t.Error("attempt after the window should be allowed")
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	t.Parallel()
	rl, _ := newTestLimiter(t, 1, time.Minute)

	rl.Allow("a")
	if allowed, _, _ := rl.Allow("b"); !allowed {
		t.Error("other key should have its own bucket")
	}
}

func TestAllow_Concurrent(t *testing.T) {
	t.Parallel()
	rl, _ := newTestLimiter(t, 50, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _, _ := rl.Allow("shared"); ok {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowedCount != 50 {
		t.Errorf("expected exactly 50 allowed, got %d", allowedCount)
	}
}

func TestCleanupExpired_RemovesStaleBuckets(t *testing.T) {
	t.Parallel()
	rl, now := newTestLimiter(t, 5, time.Minute)

	rl.Allow("old")
	*now = now.Add(2 * time.Minute)
	rl.Allow("fresh")
	rl.cleanupExpired()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.buckets["old"]; ok {
		t.Error("expected stale bucket to be removed")
	}
	if _, ok := rl.buckets["fresh"]; !ok {
		t.Error("expected fresh bucket to remain")
	}
}

// ============================================================================
// RateLimit Middleware Tests
// ============================================================================

func TestRateLimit_RejectsWith429(t *testing.T) {
	t.Parallel()
	rl, _ := newTestLimiter(t, 2, time.Minute)
	handler := RateLimit(rl)(&captureHandler{})

	var rr *httptest.ResponseRecorder
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/v1/users/login", nil)
		req.RemoteAddr = "192.0.2.1:40001"
		rr = httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
	}

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Errorf("expected Retry-After 60, got %q", rr.Header().Get("Retry-After"))
	}
	if rr.Header().Get("X-RateLimit-Limit") != "2" {
		t.Errorf("expected X-RateLimit-Limit 2, got %q", rr.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimit_PortsShareBucket(t *testing.T) {
	t.Parallel()
	rl, _ := newTestLimiter(t, 1, time.Minute)
	handler := RateLimit(rl)(&captureHandler{})

	first := httptest.NewRequest(http.MethodPost, "/v1/users/login", nil)
	first.RemoteAddr = "192.0.2.7:1111"
	handler.ServeHTTP(httptest.NewRecorder(), first)

	second := httptest.NewRequest(http.MethodPost, "/v1/users/login", nil)
	second.RemoteAddr = "192.0.2.7:2222"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, second)

	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("expected the second port to hit the same bucket, got %d", rr.Code)
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterAllowsWithinBudget(t *testing.T) {
	rl := NewRateLimiter(100, 10, 100, 10)
	handler := rl.Limit(okHandler())

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d rejected with %d", i, rec.Code)
		}
	}
}

func TestRateLimiterRejectsPerIPBurst(t *testing.T) {
	rl := NewRateLimiter(1000, 1000, 1, 2)
	handler := rl.Limit(okHandler())

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("burst requests rejected: %v", codes)
	}
	if codes[3] != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %v", codes)
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	rl := NewRateLimiter(1000, 1000, 1, 1)
	handler := rl.Limit(okHandler())

	exhaust := httptest.NewRequest("POST", "/", nil)
	exhaust.RemoteAddr = "10.0.0.3:1"
	for i := 0; i < 3; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), exhaust)
	}

	rec := httptest.NewRecorder()
	other := httptest.NewRequest("POST", "/", nil)
	other.RemoteAddr = "10.0.0.4:1"
	handler.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Fatalf("fresh client rejected with %d", rec.Code)
	}
}

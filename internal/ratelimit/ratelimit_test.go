package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMemoryLimiterEnforcesLimit(t *testing.T) {
	l, err := New(nil, 3)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	handler := Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var tooMany int
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			tooMany++
		}
	}
	if tooMany != 2 {
		t.Fatalf("throttled %d of 5 requests, want 2", tooMany)
	}
}

func TestInvalidRateRejected(t *testing.T) {
	if _, err := New(nil, 0); err == nil {
		t.Fatal("expected error for non-positive rate")
	}
}

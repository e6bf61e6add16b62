package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeClock is a settable time source for the limiter.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*RateLimiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(limit, window)
	rl.now = clock.now
	t.Cleanup(rl.Stop)
	return rl, clock
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	rl, clock := newTestLimiter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		if ok, _ := rl.allow("ada"); !ok {
			t.Fatalf("attempt %d refused", i+1)
		}
		clock.advance(10 * time.Second)
	}
	ok, wait := rl.allow("ada")
	if ok {
		t.Fatal("fourth attempt inside the window allowed")
	}
	// The first attempt was 30s ago and leaves the window in another 30s.
	if wait != 30*time.Second {
		t.Errorf("retry hint = %v, want 30s", wait)
	}
	if ok, _ := rl.allow("grace"); !ok {
		t.Error("another client shares the budget")
	}

	clock.advance(31 * time.Second)
	if ok, _ := rl.allow("ada"); !ok {
		t.Error("attempt refused after the oldest one expired")
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 2, time.Minute)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		method string
		path   string
		htmx   bool
		want   int
	}{
		{"first sign-in", http.MethodPost, "/signin", false, http.StatusOK},
		{"second sign-in", http.MethodPost, "/signin", false, http.StatusOK},
		{"third sign-in", http.MethodPost, "/signin", false, http.StatusTooManyRequests},
		{"htmx sign-in", http.MethodPost, "/signin", true, http.StatusTooManyRequests},
		{"sign-up has its own budget", http.MethodPost, "/signup", false, http.StatusOK},
		{"rendering the form is free", http.MethodGet, "/signin", false, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.RemoteAddr = "192.0.2.7:51000"
			if tt.htmx {
				req.Header.Set("HX-Request", "true")
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("status: got %d, want %d", rr.Code, tt.want)
			}
			if tt.want != http.StatusTooManyRequests {
				return
			}
			if rr.Header().Get("Retry-After") != "60" {
				t.Errorf("Retry-After = %q, want 60", rr.Header().Get("Retry-After"))
			}
			toast := strings.Contains(rr.Header().Get("HX-Trigger"), "Too many attempts")
			if toast != tt.htmx {
				t.Errorf("toast raised = %v, want %v", toast, tt.htmx)
			}
			if tt.htmx && rr.Header().Get("HX-Reswap") != "none" {
				t.Error("HX-Reswap not set")
			}
		})
	}
}

func TestRateLimiter_CleanupDropsIdleClients(t *testing.T) {
	rl, clock := newTestLimiter(t, 5, time.Minute)

	rl.allow("idle")
	rl.allow("busy")
	clock.advance(45 * time.Second)
	rl.allow("busy")
	clock.advance(30 * time.Second)
	rl.cleanup()

	rl.mu.RLock()
	defer rl.mu.RUnlock()
	if _, ok := rl.clients["idle"]; ok {
		t.Error("idle client kept")
	}
	if _, ok := rl.clients["busy"]; !ok {
		t.Error("busy client dropped")
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, time.Second)
	rl.Stop()
	rl.Stop()
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{"forwarded single", "203.0.113.4", "", "10.1.1.1:443", "203.0.113.4"},
		{"forwarded chain", "203.0.113.4, 198.51.100.2", "", "10.1.1.1:443", "203.0.113.4"},
		{"real ip", "", " 203.0.113.9 ", "10.1.1.1:443", "203.0.113.9"},
		{"remote with port", "", "", "192.0.2.1:8080", "192.0.2.1"},
		{"remote without port", "", "", "192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

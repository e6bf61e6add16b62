package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

// captureLogs routes the default logger into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLogger_RecordsRequest(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		htmx   bool
		inner  http.HandlerFunc
		status int
	}{
		{"implicit 200", http.MethodGet, "/", false, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("home"))
		}, http.StatusOK},
		{"not found", http.MethodGet, "/category/nope", false, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}, http.StatusNotFound},
		{"htmx create", http.MethodPost, "/categories", true, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLogs(t)
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.htmx {
				req.Header.Set("HX-Request", "true")
			}
			rr := httptest.NewRecorder()
			RequestID(Logger(tt.inner)).ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Fatalf("status: got %d, want %d", rr.Code, tt.status)
			}
			var entry map[string]any
			if err := json.Unmarshal(logs.Bytes(), &entry); err != nil {
				t.Fatalf("decode log line %q: %v", logs.String(), err)
			}
			if entry["msg"] != "http request" || entry["method"] != tt.method || entry["path"] != tt.path {
				t.Errorf("log entry = %v", entry)
			}
			if entry["status"] != float64(tt.status) || entry["htmx"] != tt.htmx {
				t.Errorf("status/htmx = %v/%v", entry["status"], entry["htmx"])
			}
			if entry["request_id"] != rr.Header().Get(RequestIDHeader) {
				t.Errorf("request_id %v, header %q", entry["request_id"], rr.Header().Get(RequestIDHeader))
			}
		})
	}
}

func TestResponseWriter_FirstStatusWins(t *testing.T) {
	rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
	rw.WriteHeader(http.StatusConflict)
	rw.WriteHeader(http.StatusInternalServerError)
	rw.Write([]byte("draft already closed"))

	if rw.statusCode != http.StatusConflict {
		t.Errorf("statusCode: got %d, want 409", rw.statusCode)
	}
	if rw.Unwrap() == nil {
		t.Error("Unwrap lost the underlying writer")
	}
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"minted when absent", "", false},
		{"well-formed reused", "0b6a40c2-8d1f-4a57-9a39-5b7f0c7b1f11", true},
		{"malformed replaced", "<script>", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = RequestIDFromCtx(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if got == "" || rr.Header().Get(RequestIDHeader) != got {
				t.Fatalf("context %q, header %q", got, rr.Header().Get(RequestIDHeader))
			}
			if (got == tt.incoming) != tt.keep {
				t.Errorf("incoming %q kept = %v, want %v", tt.incoming, got == tt.incoming, tt.keep)
			}
		})
	}

	if RequestIDFromCtx(context.Background()) != "" {
		t.Error("expected empty ID without middleware")
	}
}

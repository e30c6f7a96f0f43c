package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func middlewareTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(handlers...)
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		allowed []string
		want    bool
	}{
		{name: "exact match", origin: "http://localhost:3000", allowed: []string{"http://localhost:3000"}, want: true},
		{name: "wildcard matches everything", origin: "https://anywhere.example", allowed: []string{"*"}, want: true},
		{name: "suffix wildcard matches", origin: "chrome-extension://abcdef", allowed: []string{"chrome-extension://*"}, want: true},
		{name: "suffix wildcard rejects other scheme", origin: "https://evil.example", allowed: []string{"chrome-extension://*"}, want: false},
		{name: "no match", origin: "https://evil.example", allowed: []string{"http://localhost:3000"}, want: false},
		{name: "empty allow list", origin: "http://localhost:3000", allowed: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isAllowedOrigin(tt.origin, tt.allowed); got != tt.want {
				t.Errorf("isAllowedOrigin(%q, %v) = %v, want %v", tt.origin, tt.allowed, got, tt.want)
			}
		})
	}
}

func TestCORSMiddleware_AllowedOrigin(t *testing.T) {
	router := middlewareTestRouter(CORSMiddleware([]string{"http://localhost:3000"}))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want http://localhost:3000", got)
	}
}

func TestCORSMiddleware_DisallowedOrigin(t *testing.T) {
	router := middlewareTestRouter(CORSMiddleware([]string{"http://localhost:3000"}))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
	}
	// Request itself still goes through; CORS enforcement is the browser's job.
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	router := middlewareTestRouter(CORSMiddleware([]string{"*"}))

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
}

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	router := middlewareTestRouter(RequestIDMiddleware())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Header().Get(requestIDHeader) == "" {
		t.Error("response missing generated request ID")
	}
}

func TestRequestIDMiddleware_EchoesCallerID(t *testing.T) {
	router := middlewareTestRouter(RequestIDMiddleware())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "caller-supplied-id")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get(requestIDHeader); got != "caller-supplied-id" {
		t.Errorf("request ID = %q, want caller-supplied-id", got)
	}
}

func TestLoggerMiddleware_PassesThrough(t *testing.T) {
	router := middlewareTestRouter(RequestIDMiddleware(), LoggerMiddleware(zerolog.Nop()))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	// 3 requests/minute means a burst of 3 from one IP.
	router := middlewareTestRouter(RateLimitMiddleware(3))

	var lastCode int
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		lastCode = w.Code

		if i < 3 && w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, w.Code)
		}
	}

	if lastCode != http.StatusTooManyRequests {
		t.Errorf("request past burst status = %d, want 429", lastCode)
	}
}

func TestRateLimitMiddleware_PerIP(t *testing.T) {
	router := middlewareTestRouter(RateLimitMiddleware(1))

	first := httptest.NewRequest(http.MethodGet, "/ping", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, first)
	if w.Code != http.StatusOK {
		t.Fatalf("first IP status = %d, want 200", w.Code)
	}

	// A different client gets its own bucket.
	second := httptest.NewRequest(http.MethodGet, "/ping", nil)
	second.RemoteAddr = "10.0.0.2:1234"
	w = httptest.NewRecorder()
	router.ServeHTTP(w, second)
	if w.Code != http.StatusOK {
		t.Errorf("second IP status = %d, want 200", w.Code)
	}
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	router := middlewareTestRouter(RateLimitMiddleware(0))

	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200 with limiting disabled", i+1, w.Code)
		}
	}
}

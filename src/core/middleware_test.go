package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(60)

	l1 := limiter.GetLimiter("10.0.0.1")
	l2 := limiter.GetLimiter("10.0.0.2")
	if l1 == l2 {
		t.Error("Expected distinct limiters per IP")
	}
	if limiter.GetLimiter("10.0.0.1") != l1 {
		t.Error("Expected the same limiter for the same IP")
	}
}

func TestRateLimitMiddlewareBlocksBurst(t *testing.T) {
	limiter := NewIPRateLimiter(2)
	handler := RateLimitMiddleware(limiter)(okHandler())

	var lastCode int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/api/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		lastCode = w.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Errorf("Expected 429 after exhausting the burst, got %d", lastCode)
	}

	// a different IP still has its full budget
	req := httptest.NewRequest("GET", "/api/health", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for fresh IP, got %d", w.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "192.168.1.5:9999", nil, "192.168.1.5"},
		{"x-forwarded-for single", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.7"}, "203.0.113.7"},
		{"x-forwarded-for chain", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"}, "203.0.113.7"},
		{"x-real-ip", "10.0.0.1:1", map[string]string{"X-Real-IP": "198.51.100.3"}, "198.51.100.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBodySizeLimitMiddleware(t *testing.T) {
	handler := BodySizeLimitMiddleware(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		if err := DecodeJSONBody(w, r, &payload); err != nil {
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	big := fmt.Sprintf(`{"data":%q}`, strings.Repeat("x", 64))
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(big))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected 413 for oversize body, got %d", w.Code)
	}

	req = httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"a":1}`))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for small body, got %d", w.Code)
	}
}

func TestDecodeJSONBodyInvalid(t *testing.T) {
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString("not json"))
	w := httptest.NewRecorder()

	var payload map[string]interface{}
	if err := DecodeJSONBody(w, req, &payload); err == nil {
		t.Error("Expected decode error")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var captured string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if captured == "" {
		t.Error("Expected a generated request ID in context")
	}
	if w.Header().Get("X-Request-ID") != captured {
		t.Error("Expected the response header to echo the request ID")
	}

	// a caller-supplied ID is preserved
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "caller-chosen-id")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if captured != "caller-chosen-id" {
		t.Errorf("Expected caller-supplied ID to be kept, got %q", captured)
	}
}

func TestCallerAuthMiddleware(t *testing.T) {
	secret := "test-secret"
	handler := CallerAuthMiddleware(secret, true)(okHandler())

	t.Run("anonymous passes through", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200 for anonymous request, got %d", w.Code)
		}
	})

	t.Run("valid signature accepted", func(t *testing.T) {
		timestamp := time.Now().Unix()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(CallerIDHeader, "user1")
		req.Header.Set(CallerTimestampHeader, strconv.FormatInt(timestamp, 10))
		req.Header.Set(CallerSignatureHeader, SignCallerID("user1", timestamp, secret))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200 for signed request, got %d", w.Code)
		}
	})

	t.Run("missing timestamp rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(CallerIDHeader, "user1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401 without timestamp, got %d", w.Code)
		}
	})

	t.Run("bad signature rejected", func(t *testing.T) {
		timestamp := time.Now().Unix()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(CallerIDHeader, "user1")
		req.Header.Set(CallerTimestampHeader, strconv.FormatInt(timestamp, 10))
		req.Header.Set(CallerSignatureHeader, "forged")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401 for forged signature, got %d", w.Code)
		}
	})

	t.Run("auth disabled passes everything", func(t *testing.T) {
		open := CallerAuthMiddleware("", false)(okHandler())
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(CallerIDHeader, "user1")
		w := httptest.NewRecorder()
		open.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200 with auth disabled, got %d", w.Code)
		}
	})
}

func TestSignAndVerifyCallerID(t *testing.T) {
	secret := "test-secret"
	timestamp := time.Now().Unix()

	sig := SignCallerID("user1", timestamp, secret)
	if !VerifyCallerID("user1", timestamp, sig, secret) {
		t.Error("Expected valid signature to verify")
	}
	if VerifyCallerID("user2", timestamp, sig, secret) {
		t.Error("Expected signature bound to the identity")
	}
	if VerifyCallerID("user1", timestamp, sig, "other-secret") {
		t.Error("Expected signature bound to the secret")
	}

	stale := time.Now().Add(-CallerAuthTimestampTolerance - time.Minute).Unix()
	if VerifyCallerID("user1", stale, SignCallerID("user1", stale, secret), secret) {
		t.Error("Expected stale timestamp to be rejected")
	}
}

func TestStatusResponseWriter(t *testing.T) {
	w := httptest.NewRecorder()
	wrapped := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	wrapped.WriteHeader(http.StatusNotFound)
	if wrapped.statusCode != http.StatusNotFound {
		t.Errorf("Expected captured status 404, got %d", wrapped.statusCode)
	}
}

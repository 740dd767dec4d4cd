package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hardikSrivastav/cal.it/internal/types"
)

const testAPIKey = "test-secret-key-12345"

// mockHandler is a simple handler that records if it was called
func mockHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}), &called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	handler, called := mockHandler()
	middleware := AuthMiddleware(testAPIKey)(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	w := httptest.NewRecorder()

	middleware.ServeHTTP(w, req)

	if !*called {
		t.Error("handler was not called for valid token")
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	handler, called := mockHandler()
	middleware := AuthMiddleware(testAPIKey)(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", nil)
	// No Authorization header
	w := httptest.NewRecorder()

	middleware.ServeHTTP(w, req)

	if *called {
		t.Error("handler should not be called for missing header")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	handler, called := mockHandler()
	middleware := AuthMiddleware(testAPIKey)(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	w := httptest.NewRecorder()

	middleware.ServeHTTP(w, req)

	if *called {
		t.Error("handler should not be called for invalid token")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_MalformedHeader_NoBearer(t *testing.T) {
	handler, called := mockHandler()
	middleware := AuthMiddleware(testAPIKey)(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", nil)
	req.Header.Set("Authorization", testAPIKey) // Missing "Bearer " prefix
	w := httptest.NewRecorder()

	middleware.ServeHTTP(w, req)

	if *called {
		t.Error("handler should not be called for malformed header")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_MalformedHeader_EmptyToken(t *testing.T) {
	handler, called := mockHandler()
	middleware := AuthMiddleware(testAPIKey)(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", nil)
	req.Header.Set("Authorization", "Bearer ") // Empty token after Bearer
	w := httptest.NewRecorder()

	middleware.ServeHTTP(w, req)

	if *called {
		t.Error("handler should not be called for empty token")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_ResponseFormat_RFC7807(t *testing.T) {
	handler, _ := mockHandler()
	middleware := AuthMiddleware(testAPIKey)(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", nil)
	w := httptest.NewRecorder()

	middleware.ServeHTTP(w, req)

	contentType := w.Header().Get("Content-Type")
	if contentType != "application/problem+json" {
		t.Errorf("Content-Type = %q, want %q", contentType, "application/problem+json")
	}

	var p Problem
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("failed to unmarshal problem: %v", err)
	}
	if p.Status != http.StatusUnauthorized {
		t.Errorf("problem status = %d, want %d", p.Status, http.StatusUnauthorized)
	}
	if p.Title != "Unauthorized" {
		t.Errorf("problem title = %q, want %q", p.Title, "Unauthorized")
	}
}

func TestAuthMiddleware_NoKeyLeak(t *testing.T) {
	handler, _ := mockHandler()
	middleware := AuthMiddleware(testAPIKey)(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	w := httptest.NewRecorder()

	middleware.ServeHTTP(w, req)

	if strings.Contains(w.Body.String(), testAPIKey) {
		t.Error("response body must not contain the expected API key")
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid bearer", "Bearer abc123", "abc123"},
		{"empty header", "", ""},
		{"no prefix", "abc123", ""},
		{"lowercase bearer", "bearer abc123", ""},
		{"basic auth", "Basic dXNlcjpwYXNz", ""},
		{"trailing whitespace", "Bearer abc123  ", "abc123"},
		{"empty token", "Bearer ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := extractBearerToken(req); got != tt.want {
				t.Errorf("extractBearerToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestConstantTimeEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"equal", "secret", "secret", true},
		{"different", "secret", "wrong", false},
		{"different length", "secret", "secret2", false},
		{"both empty", "", "", true},
		{"one empty", "secret", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := constantTimeEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("constantTimeEqual(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestLoggingMiddleware_CapturesStatus(t *testing.T) {
	var buf bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(old)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/meals", nil)
	w := httptest.NewRecorder()

	LoggingMiddleware(handler).ServeHTTP(w, req)

	logged := buf.String()
	if !strings.Contains(logged, `"status":201`) {
		t.Errorf("log should carry status 201, got: %s", logged)
	}
	if !strings.Contains(logged, `"path":"/api/v1/meals"`) {
		t.Errorf("log should carry the request path, got: %s", logged)
	}
}

func TestLoggingMiddleware_NoAuthHeaderLeak(t *testing.T) {
	var buf bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(old)

	handler, _ := mockHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	w := httptest.NewRecorder()

	LoggingMiddleware(handler).ServeHTTP(w, req)

	if strings.Contains(buf.String(), testAPIKey) {
		t.Error("request log must not contain the bearer token")
	}
}

func TestRecoveryMiddleware_NoPanic(t *testing.T) {
	handler, called := mockHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()

	RecoveryMiddleware(handler).ServeHTTP(w, req)

	if !*called {
		t.Error("handler was not called")
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRecoveryMiddleware_Panic(t *testing.T) {
	var buf bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(old)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("secret internal state")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil)
	w := httptest.NewRecorder()

	RecoveryMiddleware(handler).ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}

	contentType := w.Header().Get("Content-Type")
	if contentType != "application/problem+json" {
		t.Errorf("Content-Type = %q, want %q", contentType, "application/problem+json")
	}

	// Panic value is logged, never sent to the client
	if strings.Contains(w.Body.String(), "secret internal state") {
		t.Error("response body must not contain panic details")
	}
	if !strings.Contains(buf.String(), "secret internal state") {
		t.Error("panic details should be logged")
	}
}

// --- Router-Level Auth Tests ---

func newTestRouter(apiKey string) http.Handler {
	h := &Handler{
		interpreter: &mockInterpreter{result: testResult()},
		sessions:    &mockSessions{},
		store:       &mockStore{stats: &types.StoreStats{}},
		apiKey:      apiKey,
		version:     "test",
	}
	return NewRouter(h)
}

func TestRouter_HealthBypassesAuth(t *testing.T) {
	router := newTestRouter(testAPIKey)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	// No Authorization header
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d (health must stay public)", w.Code, http.StatusOK)
	}
}

func TestRouter_ProtectedRoutesRequireAuth(t *testing.T) {
	router := newTestRouter(testAPIKey)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/messages"},
		{http.MethodPost, "/api/v1/meals"},
		{http.MethodGet, "/api/v1/entries"},
		{http.MethodGet, "/api/v1/summary"},
	}

	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want %d", p.method, p.path, w.Code, http.StatusUnauthorized)
		}
	}
}

func TestRouter_NoAPIKeyMeansOpenAccess(t *testing.T) {
	router := newTestRouter("")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entries?user_id=user-1", nil)
	// No Authorization header
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d (empty key disables auth)", w.Code, http.StatusOK)
	}
}

func TestRouter_ValidTokenPassesThrough(t *testing.T) {
	router := newTestRouter(testAPIKey)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entries?user_id=user-1", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
	}
}

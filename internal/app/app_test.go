package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"kv-shepherd.io/shepherd/internal/config"
	"kv-shepherd.io/shepherd/internal/pkg/logger"
	"kv-shepherd.io/shepherd/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = logger.Init("error", "json")
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Backend: config.BackendConfig{Kind: storage.BackendMemory},
		Log:     config.LogConfig{Level: "error", Format: "json"},
		Security: config.SecurityConfig{
			TokenSigningKey: "unit-test-signing-key-unit-test-signing-key",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 24 * time.Hour,
			BcryptCost:      4,
		},
	}
}

func TestBootstrap_MemoryBackend(t *testing.T) {
	application, err := Bootstrap(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	defer application.Shutdown()

	if application.Router == nil {
		t.Fatal("expected a non-nil router")
	}
	if application.Service == nil {
		t.Fatal("expected a non-nil service")
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
	application.Router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("liveness status = %d, want %d", w.Code, http.StatusOK)
	}

	if err := application.Start(context.Background()); err != nil {
		t.Errorf("start: %v", err)
	}
}

func TestRouter_PublicRoutesBypassAuth(t *testing.T) {
	application, err := Bootstrap(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	defer application.Shutdown()

	body := `{"name":"alice","email":"alice@example.com","password":"hunter2"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	application.Router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body=%s", w.Code, w.Body.String())
	}
}

func TestRouter_ProtectedRouteRequiresToken(t *testing.T) {
	application, err := Bootstrap(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	defer application.Shutdown()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	application.Router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d, body=%s", w.Code, http.StatusUnauthorized, w.Body.String())
	}
}

func TestRouter_AuthenticatedFlow(t *testing.T) {
	application, err := Bootstrap(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	defer application.Shutdown()

	registerBody := `{"name":"alice","email":"alice@example.com","password":"hunter2"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(registerBody))
	req.Header.Set("Content-Type", "application/json")
	application.Router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body=%s", w.Code, w.Body.String())
	}

	var tokens map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &tokens); err != nil {
		t.Fatalf("unmarshal register response: %v", err)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokens["accessToken"])
	application.Router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("me status = %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/tables", nil)
	req.Header.Set("Authorization", "Bearer "+tokens["accessToken"])
	application.Router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("admin tables status (owner) = %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}
}

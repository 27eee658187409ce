package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"kv-shepherd.io/shepherd/internal/api/middleware"
	"kv-shepherd.io/shepherd/internal/domain"
	"kv-shepherd.io/shepherd/internal/integrations"
	"kv-shepherd.io/shepherd/internal/pkg/logger"
	"kv-shepherd.io/shepherd/internal/service"
	"kv-shepherd.io/shepherd/internal/storage/memory"
	"kv-shepherd.io/shepherd/internal/token"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = logger.Init("error", "json")
}

// newTestServer wires a Server against an in-memory Service, mirroring
// internal/service's own test harness.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := memory.New()
	clock := integrations.NewFixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	issuer := token.NewIssuer(token.Config{
		SigningKey: []byte("test-signing-key"),
		Issuer:     "voting-service-test",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}, token.NewMemoryRevocationStore())

	svc := service.New(service.Deps{
		Storage:   store.Triple(),
		Clock:     clock,
		IDs:       integrations.NewDeterministicIDGenerator("handler-test"),
		Passwords: integrations.NewBcryptPasswordUtil(),
		Notify:    &integrations.RecordingNotifications{},
		Tokens:    issuer,
	})
	return NewServer(Deps{Service: svc})
}

// asUser injects an authenticated caller directly into the request
// context, standing in for middleware.JWTAuth so handler tests don't
// need to mint and attach real bearer tokens.
func asUser(name string, role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(middleware.SetUserContext(c.Request.Context(), name, role))
		c.Next()
	}
}

func newRouter(s *Server, name string, role domain.Role) *gin.Engine {
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.Use(asUser(name, role))
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	router.ServeHTTP(w, req)
	return w
}

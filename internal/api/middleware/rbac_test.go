package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"kv-shepherd.io/shepherd/internal/authz"
	"kv-shepherd.io/shepherd/internal/domain"
)

func fakeAuth(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if role != "" {
			c.Request = c.Request.WithContext(SetUserContext(c.Request.Context(), "test-user", role))
		}
		c.Next()
	}
}

func newRBACRouter(role domain.Role, perm authz.Permission) *gin.Engine {
	router := gin.New()
	router.Use(fakeAuth(role))
	router.GET("/guarded", RequirePermission(perm), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRequirePermission_Unauthenticated(t *testing.T) {
	router := newRBACRouter("", authz.PermVote)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestRequirePermission_UserCanVote(t *testing.T) {
	router := newRBACRouter(domain.RoleUser, authz.PermVote)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRequirePermission_UserCannotManageUsers(t *testing.T) {
	router := newRBACRouter(domain.RoleUser, authz.PermManageUsers)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestRequirePermission_AdminCannotManageUsers(t *testing.T) {
	router := newRBACRouter(domain.RoleAdmin, authz.PermManageUsers)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestRequirePermission_AdminCanManageAnyElection(t *testing.T) {
	router := newRBACRouter(domain.RoleAdmin, authz.PermManageAnyElection)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRequirePermission_OwnerCanManageUsers(t *testing.T) {
	router := newRBACRouter(domain.RoleOwner, authz.PermManageUsers)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRequirePermission_UnknownRoleDenied(t *testing.T) {
	router := newRBACRouter(domain.Role("bogus"), authz.PermVote)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

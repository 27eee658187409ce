package handlers

import (
	"context"
	"net/http"
	"testing"

	"kv-shepherd.io/shepherd/internal/domain"
)

func TestListTables_RequiresOwner(t *testing.T) {
	s := newTestServer(t)
	if _, _, err := s.svc.Register(context.Background(), "alice", "alice@example.com", "hunter2"); err != nil {
		t.Fatalf("register alice: %v", err)
	}
	if _, _, err := s.svc.Register(context.Background(), "bob", "bob@example.com", "hunter2"); err != nil {
		t.Fatalf("register bob: %v", err)
	}

	owner := newRouter(s, "alice", domain.RoleOwner)
	owner.GET("/admin/tables", s.ListTables)

	w := doRequest(owner, http.MethodGet, "/admin/tables", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	user := newRouter(s, "bob", domain.RoleUser)
	user.GET("/admin/tables", s.ListTables)

	w = doRequest(user, http.MethodGet, "/admin/tables", "")
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d, body=%s", w.Code, http.StatusForbidden, w.Body.String())
	}
}

func TestListRolePermissions(t *testing.T) {
	s := newTestServer(t)
	owner := newRouter(s, "alice", domain.RoleOwner)
	owner.GET("/admin/roles/:role/permissions", s.ListRolePermissions)

	w := doRequest(owner, http.MethodGet, "/admin/roles/ADMIN/permissions", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}
}

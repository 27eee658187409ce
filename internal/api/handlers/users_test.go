package handlers

import (
	"context"
	"net/http"
	"testing"

	"kv-shepherd.io/shepherd/internal/domain"
)

func TestSetUserRole_PromotesUser(t *testing.T) {
	s := newTestServer(t)
	if _, _, err := s.svc.Register(context.Background(), "alice", "alice@example.com", "hunter2"); err != nil {
		t.Fatalf("register alice: %v", err)
	}
	if _, _, err := s.svc.Register(context.Background(), "bob", "bob@example.com", "hunter2"); err != nil {
		t.Fatalf("register bob: %v", err)
	}

	owner := newRouter(s, "alice", domain.RoleOwner)
	owner.PUT("/users/:name/role", s.SetUserRole)
	owner.GET("/users/:name", s.GetUser)

	w := doRequest(owner, http.MethodPut, "/users/bob/role", `{"role":"ADMIN"}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d, body=%s", w.Code, http.StatusNoContent, w.Body.String())
	}

	w = doRequest(owner, http.MethodGet, "/users/bob", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}
}

func TestSetUserRole_SoleOwnerCannotBeDemoted(t *testing.T) {
	s := newTestServer(t)
	if _, _, err := s.svc.Register(context.Background(), "alice", "alice@example.com", "hunter2"); err != nil {
		t.Fatalf("register alice: %v", err)
	}

	owner := newRouter(s, "alice", domain.RoleOwner)
	owner.PUT("/users/:name/role", s.SetUserRole)

	w := doRequest(owner, http.MethodPut, "/users/alice/role", `{"role":"USER"}`)
	if w.Code < 400 {
		t.Errorf("status = %d, want an error status, body=%s", w.Code, w.Body.String())
	}
}

func TestRemoveUser_ForbiddenForNonOwner(t *testing.T) {
	s := newTestServer(t)
	if _, _, err := s.svc.Register(context.Background(), "alice", "alice@example.com", "hunter2"); err != nil {
		t.Fatalf("register alice: %v", err)
	}
	if _, _, err := s.svc.Register(context.Background(), "bob", "bob@example.com", "hunter2"); err != nil {
		t.Fatalf("register bob: %v", err)
	}

	asBob := newRouter(s, "bob", domain.RoleUser)
	asBob.DELETE("/users/:name", s.RemoveUser)

	w := doRequest(asBob, http.MethodDelete, "/users/alice", "")
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d, body=%s", w.Code, http.StatusForbidden, w.Body.String())
	}
}

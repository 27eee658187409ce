package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"kv-shepherd.io/shepherd/internal/domain"
)

func TestRegister_FirstUserBecomesOwner(t *testing.T) {
	s := newTestServer(t)
	router := newRouter(s, "", "")
	router.POST("/auth/register", s.Register)
	router.GET("/auth/me", asUser("alice", domain.RoleOwner), s.GetCurrentUser)

	w := doRequest(router, http.MethodPost, "/auth/register", `{"name":"alice","email":"alice@example.com","password":"hunter2"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body=%s", w.Code, w.Body.String())
	}

	w = doRequest(router, http.MethodGet, "/auth/me", "")
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d, body=%s", w.Code, w.Body.String())
	}
	var me map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &me); err != nil {
		t.Fatalf("unmarshal me response: %v", err)
	}
	if me["role"] != string(domain.RoleOwner) {
		t.Errorf("role = %v, want %s", me["role"], domain.RoleOwner)
	}
}

func TestRegister_InvalidBody(t *testing.T) {
	s := newTestServer(t)
	router := newRouter(s, "", "")
	router.POST("/auth/register", s.Register)

	w := doRequest(router, http.MethodPost, "/auth/register", `{"name":"alice"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}
}

func TestLogin_RejectsWrongPassword(t *testing.T) {
	s := newTestServer(t)
	router := newRouter(s, "", "")
	router.POST("/auth/register", s.Register)
	router.POST("/auth/login", s.Login)

	doRequest(router, http.MethodPost, "/auth/register", `{"name":"alice","email":"alice@example.com","password":"hunter2"}`)

	w := doRequest(router, http.MethodPost, "/auth/login", `{"name":"alice","password":"wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d, body=%s", w.Code, http.StatusUnauthorized, w.Body.String())
	}

	w = doRequest(router, http.MethodPost, "/auth/login", `{"name":"alice","password":"hunter2"}`)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}
}

func TestRefreshToken(t *testing.T) {
	s := newTestServer(t)
	router := newRouter(s, "", "")
	router.POST("/auth/register", s.Register)
	router.POST("/auth/refresh", s.RefreshToken)

	reg := doRequest(router, http.MethodPost, "/auth/register", `{"name":"alice","email":"alice@example.com","password":"hunter2"}`)
	if reg.Code != http.StatusCreated {
		t.Fatalf("register status = %d", reg.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(reg.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal register response: %v", err)
	}

	w := doRequest(router, http.MethodPost, "/auth/refresh", `{"refreshToken":"`+body["refreshToken"]+`"}`)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}
}

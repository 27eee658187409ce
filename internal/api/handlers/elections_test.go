package handlers

import (
	"context"
	"net/http"
	"testing"

	"kv-shepherd.io/shepherd/internal/domain"
)

func TestElectionLifecycle_HTTP(t *testing.T) {
	s := newTestServer(t)
	owner := newRouter(s, "alice", domain.RoleOwner)
	owner.POST("/elections", s.CreateElection)
	owner.POST("/elections/:name/candidates", s.AddCandidates)
	owner.POST("/elections/:name/voters", s.AddVoters)
	owner.POST("/elections/:name/launch", s.LaunchElection)
	owner.GET("/elections/:name", s.GetElection)
	owner.GET("/elections/:name/tally", s.GetTally)

	voter := newRouter(s, "bob", domain.RoleUser)
	voter.POST("/elections/:name/ballot", s.CastBallot)
	voter.GET("/elections/:name/ballot", s.GetMyBallot)

	if _, _, err := s.svc.Register(context.Background(), "alice", "alice@example.com", "hunter2"); err != nil {
		t.Fatalf("register alice: %v", err)
	}
	if _, _, err := s.svc.Register(context.Background(), "bob", "bob@example.com", "hunter2"); err != nil {
		t.Fatalf("register bob: %v", err)
	}

	if w := doRequest(owner, http.MethodPost, "/elections", `{"name":"BestLanguage"}`); w.Code != http.StatusCreated {
		t.Fatalf("create election status = %d, body=%s", w.Code, w.Body.String())
	}
	if w := doRequest(owner, http.MethodPost, "/elections/BestLanguage/candidates", `{"names":["Kotlin","Rust","Go"]}`); w.Code != http.StatusNoContent {
		t.Fatalf("add candidates status = %d, body=%s", w.Code, w.Body.String())
	}
	if w := doRequest(owner, http.MethodPost, "/elections/BestLanguage/voters", `{"names":["bob"]}`); w.Code != http.StatusNoContent {
		t.Fatalf("add voters status = %d, body=%s", w.Code, w.Body.String())
	}
	if w := doRequest(owner, http.MethodPost, "/elections/BestLanguage/launch", `{"allowEdit":true}`); w.Code != http.StatusNoContent {
		t.Fatalf("launch status = %d, body=%s", w.Code, w.Body.String())
	}

	ballot := `{"rankings":[{"candidateName":"Kotlin","rank":1},{"candidateName":"Rust","rank":2},{"candidateName":"Go","rank":3}]}`
	if w := doRequest(voter, http.MethodPost, "/elections/BestLanguage/ballot", ballot); w.Code != http.StatusNoContent {
		t.Fatalf("cast ballot status = %d, body=%s", w.Code, w.Body.String())
	}

	if w := doRequest(voter, http.MethodGet, "/elections/BestLanguage/ballot", ""); w.Code != http.StatusOK {
		t.Errorf("get my ballot status = %d, body=%s", w.Code, w.Body.String())
	}

	if w := doRequest(owner, http.MethodGet, "/elections/BestLanguage/tally", ""); w.Code != http.StatusOK {
		t.Errorf("tally status = %d, body=%s", w.Code, w.Body.String())
	}
}

func TestCastBallot_RejectsUnknownCandidate(t *testing.T) {
	s := newTestServer(t)
	owner := newRouter(s, "alice", domain.RoleOwner)
	owner.POST("/elections", s.CreateElection)
	owner.POST("/elections/:name/candidates", s.AddCandidates)
	owner.POST("/elections/:name/voters", s.AddVoters)
	owner.POST("/elections/:name/launch", s.LaunchElection)

	voter := newRouter(s, "bob", domain.RoleUser)
	voter.POST("/elections/:name/ballot", s.CastBallot)

	if _, _, err := s.svc.Register(context.Background(), "alice", "alice@example.com", "hunter2"); err != nil {
		t.Fatalf("register alice: %v", err)
	}
	if _, _, err := s.svc.Register(context.Background(), "bob", "bob@example.com", "hunter2"); err != nil {
		t.Fatalf("register bob: %v", err)
	}
	doRequest(owner, http.MethodPost, "/elections", `{"name":"Dessert"}`)
	doRequest(owner, http.MethodPost, "/elections/Dessert/candidates", `{"names":["Pie","Cake"]}`)
	doRequest(owner, http.MethodPost, "/elections/Dessert/voters", `{"names":["bob"]}`)
	doRequest(owner, http.MethodPost, "/elections/Dessert/launch", `{"allowEdit":false}`)

	w := doRequest(voter, http.MethodPost, "/elections/Dessert/ballot", `{"rankings":[{"candidateName":"Tart","rank":1}]}`)
	if w.Code < 400 {
		t.Errorf("status = %d, want an error status, body=%s", w.Code, w.Body.String())
	}
}

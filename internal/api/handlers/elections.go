package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kv-shepherd.io/shepherd/internal/domain"
)

type createElectionRequest struct {
	Name string `json:"name" binding:"required"`
}

// optionalTimeField lets a JSON patch distinguish "omitted" (leave
// unchanged) from "present and null" (clear), matching
// domain.OptionalTime on the wire.
type optionalTimeField struct {
	Set   bool       `json:"set"`
	Value *time.Time `json:"value"`
}

func (f *optionalTimeField) toDomain() *domain.OptionalTime {
	if f == nil {
		return nil
	}
	return &domain.OptionalTime{Set: f.Set, Value: f.Value}
}

type updateElectionRequest struct {
	SecretBallot   *bool              `json:"secretBallot"`
	AllowVote      *bool              `json:"allowVote"`
	AllowEdit      *bool              `json:"allowEdit"`
	NoVotingBefore *optionalTimeField `json:"noVotingBefore"`
	NoVotingAfter  *optionalTimeField `json:"noVotingAfter"`
}

type launchElectionRequest struct {
	AllowEdit bool `json:"allowEdit"`
}

type namesRequest struct {
	Names []string `json:"names" binding:"required"`
}

func electionResponse(e domain.Election) gin.H {
	return gin.H{
		"name": e.Name, "ownerName": e.OwnerName, "stage": string(e.Stage()),
		"secretBallot": e.SecretBallot, "allowVote": e.AllowVote, "allowEdit": e.AllowEdit,
		"noVotingBefore": e.NoVotingBefore, "noVotingAfter": e.NoVotingAfter,
	}
}

// CreateElection handles POST /elections.
func (s *Server) CreateElection(c *gin.Context) {
	var req createElectionRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := s.svc.CreateElection(c.Request.Context(), caller(c), req.Name); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusCreated)
}

// UpdateElection handles PATCH /elections/:name.
func (s *Server) UpdateElection(c *gin.Context) {
	var req updateElectionRequest
	if !bindJSON(c, &req) {
		return
	}
	patch := domain.ElectionUpdated{
		SecretBallot:   req.SecretBallot,
		AllowVote:      req.AllowVote,
		AllowEdit:      req.AllowEdit,
		NoVotingBefore: req.NoVotingBefore.toDomain(),
		NoVotingAfter:  req.NoVotingAfter.toDomain(),
	}
	if err := s.svc.UpdateElection(c.Request.Context(), caller(c), c.Param("name"), patch); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LaunchElection handles POST /elections/:name/launch.
func (s *Server) LaunchElection(c *gin.Context) {
	var req launchElectionRequest
	_ = c.ShouldBindJSON(&req)
	if err := s.svc.LaunchElection(c.Request.Context(), caller(c), c.Param("name"), req.AllowEdit); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// FinalizeElection handles POST /elections/:name/finalize.
func (s *Server) FinalizeElection(c *gin.Context) {
	if err := s.svc.FinalizeElection(c.Request.Context(), caller(c), c.Param("name")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteElection handles DELETE /elections/:name.
func (s *Server) DeleteElection(c *gin.Context) {
	if err := s.svc.DeleteElection(c.Request.Context(), caller(c), c.Param("name")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetElection handles GET /elections/:name.
func (s *Server) GetElection(c *gin.Context) {
	e, err := s.svc.GetElection(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, electionResponse(*e))
}

// ListElections handles GET /elections.
func (s *Server) ListElections(c *gin.Context) {
	elections, err := s.svc.ListElections(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	out := make([]gin.H, len(elections))
	for i, e := range elections {
		out[i] = electionResponse(e)
	}
	c.JSON(http.StatusOK, out)
}

// AddCandidates handles POST /elections/:name/candidates.
func (s *Server) AddCandidates(c *gin.Context) {
	var req namesRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := s.svc.AddCandidates(c.Request.Context(), caller(c), c.Param("name"), req.Names); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveCandidates handles DELETE /elections/:name/candidates.
func (s *Server) RemoveCandidates(c *gin.Context) {
	var req namesRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := s.svc.RemoveCandidates(c.Request.Context(), caller(c), c.Param("name"), req.Names); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListCandidates handles GET /elections/:name/candidates.
func (s *Server) ListCandidates(c *gin.Context) {
	candidates, err := s.svc.ListCandidates(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, candidates)
}

// AddVoters handles POST /elections/:name/voters.
func (s *Server) AddVoters(c *gin.Context) {
	var req namesRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := s.svc.AddVoters(c.Request.Context(), caller(c), c.Param("name"), req.Names); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveVoters handles DELETE /elections/:name/voters.
func (s *Server) RemoveVoters(c *gin.Context) {
	var req namesRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := s.svc.RemoveVoters(c.Request.Context(), caller(c), c.Param("name"), req.Names); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListVoters handles GET /elections/:name/voters.
func (s *Server) ListVoters(c *gin.Context) {
	voters, err := s.svc.ListVoters(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, voters)
}

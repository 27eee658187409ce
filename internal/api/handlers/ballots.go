package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kv-shepherd.io/shepherd/internal/domain"
)

type castBallotRequest struct {
	Rankings []domain.Ranking `json:"rankings" binding:"required"`
}

// CastBallot handles POST /elections/:name/ballot.
func (s *Server) CastBallot(c *gin.Context) {
	var req castBallotRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := s.svc.CastBallot(c.Request.Context(), caller(c), c.Param("name"), req.Rankings); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ChangeBallotRankings handles PUT /elections/:name/ballot/rankings.
func (s *Server) ChangeBallotRankings(c *gin.Context) {
	var req castBallotRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := s.svc.ChangeBallotRankings(c.Request.Context(), caller(c), c.Param("name"), req.Rankings); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetMyBallot handles GET /elections/:name/ballot.
func (s *Server) GetMyBallot(c *gin.Context) {
	b, err := s.svc.GetMyBallot(c.Request.Context(), caller(c), c.Param("name"))
	if err != nil {
		c.Error(err)
		return
	}
	if b == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListBallots handles GET /elections/:name/ballots.
func (s *Server) ListBallots(c *gin.Context) {
	views, err := s.svc.ListBallots(c.Request.Context(), caller(c), c.Param("name"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetTally handles GET /elections/:name/tally.
func (s *Server) GetTally(c *gin.Context) {
	result, err := s.svc.Tally(c.Request.Context(), caller(c), c.Param("name"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

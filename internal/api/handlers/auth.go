package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kv-shepherd.io/shepherd/internal/api/middleware"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Register handles POST /auth/register.
func (s *Server) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	access, refresh, err := s.svc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, tokenPairResponse{AccessToken: access, RefreshToken: refresh})
}

// Login handles POST /auth/login.
func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	access, refresh, err := s.svc.Login(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tokenPairResponse{AccessToken: access, RefreshToken: refresh})
}

// RefreshToken handles POST /auth/refresh.
func (s *Server) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}
	access, refresh, err := s.svc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tokenPairResponse{AccessToken: access, RefreshToken: refresh})
}

// GetCurrentUser handles GET /auth/me.
func (s *Server) GetCurrentUser(c *gin.Context) {
	name := middleware.GetUserName(c.Request.Context())
	user, err := s.svc.GetUser(c.Request.Context(), name)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(*user))
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kv-shepherd.io/shepherd/internal/domain"
)

// newUserResponse renders a User omitting its Salt/Hash fields.
func newUserResponse(u domain.User) gin.H {
	return gin.H{"name": u.Name, "email": u.Email, "role": u.Role}
}

type setRoleRequest struct {
	Role domain.Role `json:"role" binding:"required"`
}

type setPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

type setEmailRequest struct {
	Email string `json:"email" binding:"required"`
}

type setNameRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListUsers handles GET /users. Requires MANAGE_USERS.
func (s *Server) ListUsers(c *gin.Context) {
	users, err := s.svc.ListUsers(c.Request.Context(), caller(c))
	if err != nil {
		c.Error(err)
		return
	}
	out := make([]gin.H, len(users))
	for i, u := range users {
		out[i] = newUserResponse(u)
	}
	c.JSON(http.StatusOK, out)
}

// GetUser handles GET /users/:name.
func (s *Server) GetUser(c *gin.Context) {
	u, err := s.svc.GetUser(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(*u))
}

// SetUserRole handles PUT /users/:name/role.
func (s *Server) SetUserRole(c *gin.Context) {
	var req setRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := s.svc.SetRole(c.Request.Context(), caller(c), c.Param("name"), req.Role); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetUserPassword handles PUT /users/:name/password.
func (s *Server) SetUserPassword(c *gin.Context) {
	var req setPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := s.svc.SetPassword(c.Request.Context(), caller(c), c.Param("name"), req.Password); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetUserEmail handles PUT /users/:name/email.
func (s *Server) SetUserEmail(c *gin.Context) {
	var req setEmailRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := s.svc.SetEmail(c.Request.Context(), caller(c), c.Param("name"), req.Email); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RenameUser handles PUT /users/:name/name.
func (s *Server) RenameUser(c *gin.Context) {
	var req setNameRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := s.svc.SetUserName(c.Request.Context(), caller(c), c.Param("name"), req.Name); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveUser handles DELETE /users/:name.
func (s *Server) RemoveUser(c *gin.Context) {
	if err := s.svc.RemoveUser(c.Request.Context(), caller(c), c.Param("name")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kv-shepherd.io/shepherd/internal/domain"
)

// ListTables handles GET /admin/tables.
func (s *Server) ListTables(c *gin.Context) {
	tables, err := s.svc.ListTables(c.Request.Context(), caller(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

// GetTableData handles GET /admin/tables/:table.
func (s *Server) GetTableData(c *gin.Context) {
	rows, err := s.svc.TableData(c.Request.Context(), caller(c), c.Param("table"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// ListRolePermissions handles GET /admin/roles/:role/permissions.
func (s *Server) ListRolePermissions(c *gin.Context) {
	role := domain.Role(c.Param("role"))
	c.JSON(http.StatusOK, s.svc.ListPermissions(role))
}

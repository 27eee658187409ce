package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kv-shepherd.io/shepherd/internal/authz"
)

// RequirePermission returns middleware that aborts with 403 unless the
// authenticated caller's role (populated by JWTAuth) carries permission.
// Per-resource checks (does this user own this election) stay in the
// Service layer, which has the election record to check against;
// this middleware only enforces the role's fixed global grant.
func RequirePermission(permission authz.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetUserRole(c.Request.Context())
		if role == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code": "FORBIDDEN", "message": "not authenticated",
			})
			return
		}

		if !authz.RoleHasPermission(role, permission) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code": "FORBIDDEN", "message": "insufficient permissions",
			})
			return
		}

		c.Next()
	}
}

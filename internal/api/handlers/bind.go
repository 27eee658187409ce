package handlers

import (
	"github.com/gin-gonic/gin"

	"kv-shepherd.io/shepherd/internal/api/middleware"
	apperrors "kv-shepherd.io/shepherd/internal/pkg/errors"
)

// bindJSON decodes the request body into dst, aborting the request
// with a validation AppError on malformed JSON. Handlers that need to
// do more than abort-on-error should call c.ShouldBindJSON directly.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.Error(apperrors.ValidationFailed(apperrors.CodeInvalidRequestField, "invalid request body: "+err.Error()))
		return false
	}
	return true
}

// caller returns the authenticated caller's name from context, set by
// middleware.JWTAuth.
func caller(c *gin.Context) string {
	return middleware.GetUserName(c.Request.Context())
}

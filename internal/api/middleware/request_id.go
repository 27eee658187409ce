package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"kv-shepherd.io/shepherd/internal/domain"
)

type contextKey string

const (
	// RequestIDHeader is the HTTP header for request tracing.
	RequestIDHeader = "X-Request-ID"

	ctxKeyRequestID contextKey = "request_id"
	ctxKeyUserName  contextKey = "user_name"
	ctxKeyUserRole  contextKey = "user_role"
)

// RequestID injects a unique request ID into the context and response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			id, _ := uuid.NewV7()
			rid = id.String()
		}
		c.Set(string(ctxKeyRequestID), rid)
		c.Writer.Header().Set(RequestIDHeader, rid)
		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), ctxKeyRequestID, rid),
		)
		c.Next()
	}
}

// GetRequestID extracts request ID from context.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// SetUserContext stores the authenticated caller's name and role,
// populated by JWTAuth from a validated access token's claims.
func SetUserContext(ctx context.Context, name string, role domain.Role) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUserName, name)
	ctx = context.WithValue(ctx, ctxKeyUserRole, role)
	return ctx
}

// GetUserName extracts the caller's name from context.
func GetUserName(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUserName).(string); ok {
		return v
	}
	return ""
}

// GetUserRole extracts the caller's role from context.
func GetUserRole(ctx context.Context) domain.Role {
	if v, ok := ctx.Value(ctxKeyUserRole).(domain.Role); ok {
		return v
	}
	return ""
}

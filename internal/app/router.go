package app

import (
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"kv-shepherd.io/shepherd/internal/api/handlers"
	"kv-shepherd.io/shepherd/internal/api/middleware"
	"kv-shepherd.io/shepherd/internal/authz"
	"kv-shepherd.io/shepherd/internal/config"
	"kv-shepherd.io/shepherd/internal/token"
)

// publicPrefixes lists routes that do not require a bearer token.
var publicPrefixes = []string{
	"/api/v1/auth/register",
	"/api/v1/auth/login",
	"/api/v1/auth/refresh",
	"/api/v1/health/",
}

func newRouter(cfg *config.Config, server *handlers.Server, issuer *token.Issuer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.ErrorHandler())
	router.Use(cors.New(buildCORSConfig(cfg)))
	router.Use(authSkipPublic(issuer))

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", server.Register)
	auth.POST("/login", server.Login)
	auth.POST("/refresh", server.RefreshToken)
	auth.GET("/me", server.GetCurrentUser)

	health := v1.Group("/health")
	health.GET("/live", server.GetLiveness)
	health.GET("/ready", server.GetReadiness)

	users := v1.Group("/users")
	users.GET("", middleware.RequirePermission(authz.PermManageUsers), server.ListUsers)
	users.GET("/:name", server.GetUser)
	users.PUT("/:name/role", middleware.RequirePermission(authz.PermManageUsers), server.SetUserRole)
	users.PUT("/:name/password", server.SetUserPassword)
	users.PUT("/:name/email", server.SetUserEmail)
	users.PUT("/:name/name", server.RenameUser)
	users.DELETE("/:name", middleware.RequirePermission(authz.PermManageUsers), server.RemoveUser)

	elections := v1.Group("/elections")
	elections.POST("", middleware.RequirePermission(authz.PermManageOwnElection), server.CreateElection)
	elections.GET("", server.ListElections)
	elections.GET("/:name", server.GetElection)
	elections.PATCH("/:name", server.UpdateElection)
	elections.POST("/:name/launch", server.LaunchElection)
	elections.POST("/:name/finalize", server.FinalizeElection)
	elections.DELETE("/:name", server.DeleteElection)
	elections.POST("/:name/candidates", server.AddCandidates)
	elections.DELETE("/:name/candidates", server.RemoveCandidates)
	elections.GET("/:name/candidates", server.ListCandidates)
	elections.POST("/:name/voters", server.AddVoters)
	elections.DELETE("/:name/voters", server.RemoveVoters)
	elections.GET("/:name/voters", server.ListVoters)
	elections.POST("/:name/ballot", middleware.RequirePermission(authz.PermVote), server.CastBallot)
	elections.PUT("/:name/ballot/rankings", server.ChangeBallotRankings)
	elections.GET("/:name/ballot", server.GetMyBallot)
	elections.GET("/:name/ballots", middleware.RequirePermission(authz.PermViewBallotOwn), server.ListBallots)
	elections.GET("/:name/tally", middleware.RequirePermission(authz.PermViewTally), server.GetTally)

	admin := v1.Group("/admin")
	admin.Use(middleware.RequirePermission(authz.PermViewAdminTables))
	admin.GET("/tables", server.ListTables)
	admin.GET("/tables/:table", server.GetTableData)
	admin.GET("/roles/:role/permissions", server.ListRolePermissions)

	return router
}

func buildCORSConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: cfg.Server.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}

	if cfg.Server.UnsafeAllowAllOrigins {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
		return corsCfg
	}

	origins := sanitizeAllowedOrigins(cfg.Server.AllowedOrigins)
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	corsCfg.AllowOrigins = origins
	return corsCfg
}

func sanitizeAllowedOrigins(origins []string) []string {
	cleaned := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" || origin == "*" {
			continue
		}
		cleaned = append(cleaned, origin)
	}
	return slices.Compact(cleaned)
}

// authSkipPublic applies JWTAuth to every route except publicPrefixes.
func authSkipPublic(issuer *token.Issuer) gin.HandlerFunc {
	authMw := middleware.JWTAuth(issuer)
	return func(c *gin.Context) {
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}
		authMw(c)
	}
}

// Package router wires HTTP routes to their handlers.  Route registration
// is split by concern so main can compose only the pieces it has
// dependencies for.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/filmdb/contribution-service/internal/config"
	"github.com/filmdb/contribution-service/internal/handler"
	"github.com/filmdb/contribution-service/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication.
// Currently that is only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints.  Register, login,
// refresh and logout live under /v1/auth and need no session; /v1/me is
// protected by the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterContributions registers the contribution workflow: submitting,
// amending and resolving.  All of these require a valid access token; the
// permission check for resolution happens in the service layer against the
// verifier's stored permission set.
func RegisterContributions(e *echo.Echo, ch *handler.ContributionHandler, vh *handler.VerifyHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))

	g.POST("/movies/:id/contributions/:field", ch.Create)
	g.PUT("/contributions/:field/:id", ch.Update)
	g.PUT("/contributions/:id/verify", vh.Resolve)
}

// RegisterQueries registers the read side.  The published-record listing
// is public and cached; contribution detail and the ledger search require
// a session since they expose moderation state.
func RegisterQueries(e *echo.Echo, qh *handler.QueryHandler, jwtSecret string, rdb *redis.Client) {
	cacheCfg := config.LoadCacheConfig()
	e.GET("/v1/movies/:id/records/:field", qh.GetRecords, middleware.ResponseCache(cacheCfg, rdb))

	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.GET("/contributions/:field/:id", qh.GetContribution)
	g.GET("/contributions", qh.Search)
}

// RegisterUploads registers the image upload endpoint used by photo and
// poster contributions.
func RegisterUploads(e *echo.Echo, uh *handler.UploadHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.POST("/files", uh.Upload)
}

// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hoa-community-api/internal/handler"
	"github.com/iliyamo/hoa-community-api/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo) {
	// Liveness probe for load balancers and monitoring.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints.  Register, login,
// refresh and logout are open; /v1/me requires a valid access token.
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

// RegisterPublic registers the unauthenticated community surface: the gate
// check-in and facility browsing.  The check-in endpoint takes the rate
// limiter since the PIN is the only credential and must not be guessable by
// brute force; the facility list takes the response cache.
func RegisterPublic(e *echo.Echo, gate *handler.GateHandler, fac *handler.FacilityHandler,
	rateLimit echo.MiddlewareFunc, cache echo.MiddlewareFunc) {
	e.POST("/v1/checkin", gate.CheckIn, rateLimit)
	e.GET("/v1/facilities", fac.List, cache)
}

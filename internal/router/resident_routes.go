package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hoa-community-api/internal/handler"
	"github.com/iliyamo/hoa-community-api/internal/middleware"
	"github.com/iliyamo/hoa-community-api/internal/model"
)

// RegisterResident registers the endpoints residents use to manage their
// own visitor requests and facility bookings.  Admins are allowed through
// as well so association staff can act on behalf of a resident at the
// office counter.
func RegisterResident(e *echo.Echo, v *handler.VisitHandler, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleResident, model.RoleAdmin))

	// Visitor requests.
	g.POST("/visits", v.Create)
	g.GET("/visits", v.ListMine)
	g.GET("/visits/:id", v.Get)

	// Facility reservations.
	g.POST("/reservations", b.Create)
	g.GET("/reservations", b.ListMine)
}

package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hoa-community-api/internal/handler"
	"github.com/iliyamo/hoa-community-api/internal/middleware"
	"github.com/iliyamo/hoa-community-api/internal/model"
)

// RegisterAdmin registers the association-staff endpoints: the visitor
// request decision queue, reservation decisions, facility management and
// blackout periods.
func RegisterAdmin(e *echo.Echo, v *handler.VisitHandler, b *handler.BookingHandler,
	fac *handler.FacilityHandler, bl *handler.BlackoutHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))

	// Visitor request decisions.
	g.GET("/visits/pending", v.PendingQueue)
	g.POST("/visits/:id/approve", v.Approve)
	g.POST("/visits/:id/decline", v.Decline)

	// Reservation decisions.
	g.PATCH("/reservations/:id", b.Decide)

	// Facility management.
	g.POST("/facilities", fac.Create)

	// Blackout periods.
	g.POST("/blackouts", bl.Create)
	g.GET("/facilities/:id/blackouts", bl.ListByFacility)
	g.DELETE("/blackouts/:id", bl.Delete)
}

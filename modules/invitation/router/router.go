package router

import (
	"quorum-booking/core/middleware"
	"quorum-booking/modules/invitation/controller"

	"github.com/labstack/echo/v4"
)

type InvitationRouter struct {
	controller *controller.InvitationController
}

func NewInvitationRouter(controller *controller.InvitationController) *InvitationRouter {
	return &InvitationRouter{
		controller: controller,
	}
}

func (r *InvitationRouter) Register(g *echo.Group, mw *middleware.Middleware) {
	invitations := g.Group("/invitations")
	invitations.Use(mw.ActorMiddleware())

	invitations.GET("", r.controller.GetMyInvitations)
	invitations.GET("/count", r.controller.CountPending)
	invitations.POST("/:id/accept", r.controller.AcceptInvitation)
	invitations.POST("/:id/decline", r.controller.DeclineInvitation)

	g.POST("/bookings/:id/cancel", r.controller.CancelBooking, mw.ActorMiddleware())
	g.POST("/bookings/:id/leave", r.controller.LeaveBooking, mw.ActorMiddleware())
}

package router

import (
	"quorum-booking/core/middleware"
	"quorum-booking/modules/booking/controller"

	"github.com/labstack/echo/v4"
)

type BookingRouter struct {
	controller *controller.BookingController
}

func NewBookingRouter(controller *controller.BookingController) *BookingRouter {
	return &BookingRouter{controller: controller}
}

func (r *BookingRouter) Register(g *echo.Group, mw *middleware.Middleware) {
	g.GET("/overview", r.controller.DayOverview)
	g.GET("/resources/:id/availability", r.controller.AvailableSlots)

	bookings := g.Group("/bookings")
	bookings.GET("", r.controller.ListBookings)
	bookings.GET("/:id", r.controller.GetBooking)
	bookings.GET("/:id/members", r.controller.MemberStatuses)
	bookings.POST("", r.controller.CreateBooking, mw.ActorMiddleware())

	g.GET("/me/bookings", r.controller.MyBookings, mw.ActorMiddleware())
}

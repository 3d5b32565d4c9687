package controller

import (
	"strings"

	"quorum-booking/core/controller"
	"quorum-booking/core/errors"
	"quorum-booking/core/middleware"
	"quorum-booking/core/params"
	"quorum-booking/modules/booking/dto"
	"quorum-booking/modules/booking/entity"
	"quorum-booking/modules/booking/service"

	"github.com/labstack/echo/v4"
)

type BookingController struct {
	service service.BookingServiceInterface
	controller.BaseController
}

func NewBookingController(service service.BookingServiceInterface) *BookingController {
	return &BookingController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// CreateBooking books a room for the acting participant as organizer.
func (c *BookingController) CreateBooking(ctx echo.Context) error {
	req := new(dto.CreateBookingRequest)
	if err := ctx.Bind(req); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "Invalid request body", err))
	}

	agg, appErr := c.service.CreateBooking(ctx.Request().Context(), dto.CreateBookingInput{
		OrganizerID: middleware.ActorFrom(ctx),
		ResourceID:  req.ResourceID,
		Date:        req.Date,
		TimeSlot:    req.TimeSlot,
		Members:     req.Members,
	})
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.CreatedResponse(ctx, dto.BookingResponse{Booking: agg.Booking, Invitations: agg.Invitations}, "Booking created successfully")
}

func (c *BookingController) GetBooking(ctx echo.Context) error {
	b, appErr := c.service.GetBooking(ctx.Request().Context(), ctx.Param("id"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, b, "Booking retrieved successfully")
}

// ListBookings lists every booking matching the query filters.
func (c *BookingController) ListBookings(ctx echo.Context) error {
	q := new(dto.ListBookingsQuery)
	if err := ctx.Bind(q); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "Invalid query", err))
	}
	filter, appErr := toFilter(q)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	result, appErr := c.service.ListBookings(ctx.Request().Context(), filter, *params.NewQueryParams(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Bookings retrieved successfully")
}

// MyBookings lists bookings the acting participant organizes or belongs to.
func (c *BookingController) MyBookings(ctx echo.Context) error {
	q := new(dto.ListBookingsQuery)
	if err := ctx.Bind(q); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "Invalid query", err))
	}
	q.Participant = middleware.ActorFrom(ctx)
	filter, appErr := toFilter(q)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	result, appErr := c.service.ListBookings(ctx.Request().Context(), filter, *params.NewQueryParams(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Bookings retrieved successfully")
}

func toFilter(q *dto.ListBookingsQuery) (entity.BookingFilter, *errors.AppError) {
	filter := entity.BookingFilter{
		Participant: strings.TrimSpace(q.Participant),
		Organizer:   strings.TrimSpace(q.Organizer),
		ResourceID:  q.ResourceID,
		Date:        q.Date,
		TimeSlot:    q.TimeSlot,
	}
	if q.Status != "" {
		for _, s := range strings.Split(q.Status, ",") {
			status := entity.BookingStatus(strings.TrimSpace(s))
			if !status.Valid() {
				return filter, errors.NewAppError(errors.ErrInvalidInput, "invalid status "+string(status), nil)
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	switch q.Timeline {
	case "", entity.TimelineUpcoming, entity.TimelinePast:
		filter.Timeline = q.Timeline
	default:
		return filter, errors.NewAppError(errors.ErrInvalidInput, "timeline must be upcoming or past", nil)
	}
	return filter, nil
}

func (c *BookingController) MemberStatuses(ctx echo.Context) error {
	statuses, appErr := c.service.MemberStatuses(ctx.Request().Context(), ctx.Param("id"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, statuses, "Member statuses retrieved successfully")
}

func (c *BookingController) AvailableSlots(ctx echo.Context) error {
	slots, appErr := c.service.AvailableSlots(ctx.Request().Context(), ctx.Param("id"), ctx.QueryParam("date"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, slots, "Available slots retrieved successfully")
}

// DayOverview serves the public occupancy board for ?date=, optionally ?time_slot=.
func (c *BookingController) DayOverview(ctx echo.Context) error {
	overview, appErr := c.service.DayOverview(ctx.Request().Context(), ctx.QueryParam("date"), ctx.QueryParam("time_slot"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, overview, "Overview retrieved successfully")
}

package controller

import (
	"quorum-booking/core/controller"
	"quorum-booking/core/errors"
	"quorum-booking/core/middleware"
	"quorum-booking/core/params"
	"quorum-booking/modules/booking/entity"
	"quorum-booking/modules/invitation/dto"
	"quorum-booking/modules/invitation/service"

	"github.com/labstack/echo/v4"
)

type InvitationController struct {
	service service.InvitationServiceInterface
	controller.BaseController
}

func NewInvitationController(service service.InvitationServiceInterface) *InvitationController {
	return &InvitationController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// GetMyInvitations lists the acting participant's invitations and activity records.
func (c *InvitationController) GetMyInvitations(ctx echo.Context) error {
	q := new(dto.ListInvitationsQuery)
	if err := ctx.Bind(q); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "Invalid query", err))
	}
	status := entity.InvitationStatus(q.Status)
	if status != "" && status != entity.InvitationStatusPending && !status.IsDecision() {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidInput, "invalid status "+q.Status, nil))
	}

	result, appErr := c.service.ListInvitations(ctx.Request().Context(), middleware.ActorFrom(ctx), status, *params.NewQueryParams(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Invitations retrieved successfully")
}

func (c *InvitationController) CountPending(ctx echo.Context) error {
	count, appErr := c.service.CountPending(ctx.Request().Context(), middleware.ActorFrom(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, dto.PendingCountResponse{Count: count}, "Pending count retrieved successfully")
}

func (c *InvitationController) AcceptInvitation(ctx echo.Context) error {
	return c.respond(ctx, entity.InvitationStatusAccepted)
}

func (c *InvitationController) DeclineInvitation(ctx echo.Context) error {
	return c.respond(ctx, entity.InvitationStatusDeclined)
}

func (c *InvitationController) respond(ctx echo.Context, decision entity.InvitationStatus) error {
	out, appErr := c.service.Respond(ctx.Request().Context(), ctx.Param("id"), decision, middleware.ActorFrom(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, out, "Invitation "+string(decision))
}

func (c *InvitationController) CancelBooking(ctx echo.Context) error {
	out, appErr := c.service.CancelBooking(ctx.Request().Context(), ctx.Param("id"), middleware.ActorFrom(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, out, "Booking cancelled")
}

func (c *InvitationController) LeaveBooking(ctx echo.Context) error {
	out, appErr := c.service.LeaveBooking(ctx.Request().Context(), ctx.Param("id"), middleware.ActorFrom(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, out, "Left booking")
}

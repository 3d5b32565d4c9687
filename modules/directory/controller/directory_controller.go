package controller

import (
	"strings"

	"quorum-booking/core/controller"
	"quorum-booking/core/errors"
	"quorum-booking/modules/directory/service"

	"github.com/labstack/echo/v4"
)

type DisplayNameResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type DirectoryController struct {
	service service.DirectoryServiceInterface
	controller.BaseController
}

func NewDirectoryController(service service.DirectoryServiceInterface) *DirectoryController {
	return &DirectoryController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

func (c *DirectoryController) GetDisplayName(ctx echo.Context) error {
	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidInput, "participant id is required", nil))
	}
	name := c.service.ResolveDisplayName(ctx.Request().Context(), id)
	return c.SuccessResponse(ctx, DisplayNameResponse{ID: id, Name: name}, "Display name resolved")
}

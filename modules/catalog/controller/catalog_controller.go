package controller

import (
	"quorum-booking/core/controller"
	"quorum-booking/modules/catalog/service"

	"github.com/labstack/echo/v4"
)

type CatalogController struct {
	service service.CatalogServiceInterface
	controller.BaseController
}

func NewCatalogController(service service.CatalogServiceInterface) *CatalogController {
	return &CatalogController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// ListResources returns every bookable room.
func (c *CatalogController) ListResources(ctx echo.Context) error {
	return c.SuccessResponse(ctx, c.service.ListResources(), "Resources retrieved successfully")
}

func (c *CatalogController) GetResource(ctx echo.Context) error {
	resource, err := c.service.GetResource(ctx.Param("id"))
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, resource, "Resource retrieved successfully")
}

// ListSlots returns the fixed time slots in display order.
func (c *CatalogController) ListSlots(ctx echo.Context) error {
	return c.SuccessResponse(ctx, c.service.Slots(), "Slots retrieved successfully")
}

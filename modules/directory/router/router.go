package router

import (
	"quorum-booking/modules/directory/controller"

	"github.com/labstack/echo/v4"
)

type DirectoryRouter struct {
	controller *controller.DirectoryController
}

func NewDirectoryRouter(controller *controller.DirectoryController) *DirectoryRouter {
	return &DirectoryRouter{controller: controller}
}

func (r *DirectoryRouter) Register(g *echo.Group) {
	g.GET("/directory/:id", r.controller.GetDisplayName)
}

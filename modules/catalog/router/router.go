package router

import (
	"quorum-booking/modules/catalog/controller"

	"github.com/labstack/echo/v4"
)

type CatalogRouter struct {
	controller *controller.CatalogController
}

func NewCatalogRouter(controller *controller.CatalogController) *CatalogRouter {
	return &CatalogRouter{controller: controller}
}

func (r *CatalogRouter) Register(g *echo.Group) {
	g.GET("/resources", r.controller.ListResources)
	g.GET("/resources/:id", r.controller.GetResource)
	g.GET("/slots", r.controller.ListSlots)
}

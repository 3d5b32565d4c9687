package catalog

import (
	"quorum-booking/core/config"
	"quorum-booking/modules/catalog/controller"
	"quorum-booking/modules/catalog/router"
	"quorum-booking/modules/catalog/service"

	"github.com/labstack/echo/v4"
)

func Init(g *echo.Group, cfg config.CatalogConfig) (*service.CatalogService, error) {
	svc, err := service.NewCatalogService(cfg)
	if err != nil {
		return nil, err
	}
	ctrl := controller.NewCatalogController(svc)
	router.NewCatalogRouter(ctrl).Register(g)
	return svc, nil
}

package directory

import (
	"quorum-booking/core/cache"
	"quorum-booking/core/config"
	"quorum-booking/modules/directory/controller"
	"quorum-booking/modules/directory/router"
	"quorum-booking/modules/directory/service"

	"github.com/labstack/echo/v4"
)

// Init wires the directory. c may be nil when redis is disabled.
func Init(g *echo.Group, cfg config.DirectoryConfig, c cache.Cache) *service.DirectoryService {
	svc := service.NewDirectoryService(cfg.Users, c)
	ctrl := controller.NewDirectoryController(svc)
	router.NewDirectoryRouter(ctrl).Register(g)
	return svc
}

package booking

import (
	"quorum-booking/core/middleware"
	"quorum-booking/modules/booking/controller"
	"quorum-booking/modules/booking/repository"
	"quorum-booking/modules/booking/router"
	"quorum-booking/modules/booking/service"
	catalogService "quorum-booking/modules/catalog/service"
	directoryService "quorum-booking/modules/directory/service"
	notificationService "quorum-booking/modules/notification/service"

	"github.com/labstack/echo/v4"
)

func Init(
	g *echo.Group,
	mw *middleware.Middleware,
	store repository.ConsensusStore,
	catalog catalogService.CatalogServiceInterface,
	directory directoryService.DirectoryServiceInterface,
	dispatcher notificationService.Dispatcher,
) *service.BookingService {
	svc := service.NewBookingService(store, catalog, directory, dispatcher)
	ctrl := controller.NewBookingController(svc)
	router.NewBookingRouter(ctrl).Register(g, mw)
	return svc
}

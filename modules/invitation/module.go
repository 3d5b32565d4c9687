package invitation

import (
	"quorum-booking/core/middleware"
	"quorum-booking/modules/booking/repository"
	directoryService "quorum-booking/modules/directory/service"
	"quorum-booking/modules/invitation/controller"
	"quorum-booking/modules/invitation/router"
	"quorum-booking/modules/invitation/service"
	notificationService "quorum-booking/modules/notification/service"

	"github.com/labstack/echo/v4"
)

// Init initializes the invitation module and returns the service for use by other modules
func Init(
	g *echo.Group,
	mw *middleware.Middleware,
	store repository.ConsensusStore,
	directory directoryService.DirectoryServiceInterface,
	dispatcher notificationService.Dispatcher,
) *service.InvitationService {
	svc := service.NewInvitationService(store, directory, dispatcher)
	ctrl := controller.NewInvitationController(svc)
	r := router.NewInvitationRouter(ctrl)

	r.Register(g, mw)

	return svc
}

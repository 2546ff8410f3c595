package notification

import (
	"allmeet-api/core/cache"
	"allmeet-api/core/constants"
	"allmeet-api/core/database"
	"allmeet-api/core/middleware"
	"allmeet-api/core/queue"
	"allmeet-api/modules/notification/controller"
	"allmeet-api/modules/notification/repository"
	"allmeet-api/modules/notification/router"
	"allmeet-api/modules/notification/service"

	"github.com/labstack/echo/v4"
)

// Init initializes the notification module, registers its routes and its
// asynq task handler, and returns the service for other modules to use.
func Init(e *echo.Echo, db database.IDatabase, c *cache.Cache, q *queue.Queue, mw *middleware.Middleware) *service.NotificationService {
	repo := repository.NewNotificationRepository(db)
	svc := service.NewNotificationService(repo, c, q)
	ctrl := controller.NewNotificationController(svc)
	rtr := router.NewNotificationRouter(ctrl)

	rtr.Setup(e, mw)
	if q != nil {
		q.Handle(constants.TaskTypeNotificationDeliver, svc.HandleDeliverTask)
	}

	return svc
}

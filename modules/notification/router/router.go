package router

import (
	"allmeet-api/core/middleware"
	"allmeet-api/modules/notification/controller"

	"github.com/labstack/echo/v4"
)

type NotificationRouter struct {
	NotificationController *controller.NotificationController
}

func NewNotificationRouter(notificationController *controller.NotificationController) *NotificationRouter {
	return &NotificationRouter{
		NotificationController: notificationController,
	}
}

func (r *NotificationRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	privateRoutes := v1.Group("/private")

	notificationRoutes := privateRoutes.Group("/notifications", mw.AuthMiddleware())
	notificationRoutes.GET("", r.NotificationController.GetMyNotifications)
	notificationRoutes.GET("/unread-count", r.NotificationController.CountUnread)
	notificationRoutes.PATCH("/read", r.NotificationController.MarkAsRead)
	notificationRoutes.PATCH("/read-all", r.NotificationController.MarkAllAsRead)
}

package router

import (
	"allmeet-api/core/middleware"
	"allmeet-api/modules/availability/controller"

	"github.com/labstack/echo/v4"
)

type AvailabilityRouter struct {
	AvailabilityController *controller.AvailabilityController
}

func NewAvailabilityRouter(availabilityController *controller.AvailabilityController) *AvailabilityRouter {
	return &AvailabilityRouter{AvailabilityController: availabilityController}
}

func (r *AvailabilityRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	privateRoutes := v1.Group("/private")

	availableRoutes := privateRoutes.Group("/available", mw.AuthMiddleware())
	availableRoutes.POST("", r.AvailabilityController.AddTime)
	availableRoutes.GET("", r.AvailabilityController.GetMyTimes)
	availableRoutes.DELETE("/:id", r.AvailabilityController.DeleteTime)
	availableRoutes.GET("/team/:id", r.AvailabilityController.GetTeamCommonTimes)
	availableRoutes.POST("/team/:id/auto-recommend", r.AvailabilityController.AutoRecommend)
}

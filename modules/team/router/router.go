package router

import (
	"allmeet-api/core/middleware"
	"allmeet-api/modules/team/controller"

	"github.com/labstack/echo/v4"
)

type TeamRouter struct {
	TeamController *controller.TeamController
}

func NewTeamRouter(teamController *controller.TeamController) *TeamRouter {
	return &TeamRouter{TeamController: teamController}
}

func (r *TeamRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	privateRoutes := v1.Group("/private")

	teamRoutes := privateRoutes.Group("/recruit", mw.AuthMiddleware())
	teamRoutes.POST("", r.TeamController.CreateRecruitment)
	teamRoutes.GET("/:courseID", r.TeamController.ListByCourse)
	teamRoutes.POST("/:id/join", r.TeamController.JoinTeam)
	teamRoutes.DELETE("/:id/leave", r.TeamController.LeaveTeam)
	teamRoutes.GET("/:id/members", r.TeamController.GetMembers)
}

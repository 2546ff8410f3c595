package team

import (
	"allmeet-api/core/cache"
	"allmeet-api/core/database"
	"allmeet-api/core/middleware"
	"allmeet-api/modules/team/controller"
	"allmeet-api/modules/team/repository"
	"allmeet-api/modules/team/router"
	"allmeet-api/modules/team/service"

	"github.com/labstack/echo/v4"
)

// Init initializes the team module and returns its repository for modules
// that need membership lookups.
func Init(e *echo.Echo, db database.IDatabase, c *cache.Cache, notifier service.Notifier, mw *middleware.Middleware) *repository.TeamRepository {
	repo := repository.NewTeamRepository(db)
	svc := service.NewTeamService(repo, notifier, c)
	ctrl := controller.NewTeamController(svc)
	rtr := router.NewTeamRouter(ctrl)

	rtr.Setup(e, mw)
	return repo
}

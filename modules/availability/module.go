package availability

import (
	"allmeet-api/core/cache"
	"allmeet-api/core/database"
	"allmeet-api/core/middleware"
	"allmeet-api/modules/availability/controller"
	"allmeet-api/modules/availability/repository"
	"allmeet-api/modules/availability/router"
	"allmeet-api/modules/availability/service"
	boardRepo "allmeet-api/modules/board/repository"
	teamRepo "allmeet-api/modules/team/repository"

	"github.com/labstack/echo/v4"
)

// Init wires the availability module. It depends on the team module for
// membership checks and on the board module for minting recommendation posts.
func Init(
	e *echo.Echo,
	db database.IDatabase,
	c *cache.Cache,
	teams teamRepo.TeamRepositoryInterface,
	posts boardRepo.PostRepositoryInterface,
	notifier service.Notifier,
	mw *middleware.Middleware,
) {
	repo := repository.NewAvailabilityRepository(db)

	// A typed nil *cache.Cache must not become a non-nil interface value.
	var commonCache service.Cache
	if c != nil {
		commonCache = c
	}

	svc := service.NewAvailabilityService(repo, teams, posts, notifier, commonCache)
	ctrl := controller.NewAvailabilityController(svc)
	rtr := router.NewAvailabilityRouter(ctrl)

	rtr.Setup(e, mw)
}

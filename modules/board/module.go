package board

import (
	"allmeet-api/core/database"
	"allmeet-api/core/middleware"
	"allmeet-api/modules/board/controller"
	"allmeet-api/modules/board/repository"
	"allmeet-api/modules/board/router"
	"allmeet-api/modules/board/service"

	"github.com/labstack/echo/v4"
)

// Init initializes the board module and returns the post repository, which
// the availability module uses to mint recommendation artifacts.
func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware) *repository.PostRepository {
	postRepo := repository.NewPostRepository(db)
	pollRepo := repository.NewPollRepository(db)
	svc := service.NewBoardService(postRepo, pollRepo)
	ctrl := controller.NewBoardController(svc)
	rtr := router.NewBoardRouter(ctrl)

	rtr.Setup(e, mw)
	return postRepo
}

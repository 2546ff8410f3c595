package router

import (
	"allmeet-api/core/middleware"
	"allmeet-api/modules/board/controller"

	"github.com/labstack/echo/v4"
)

type BoardRouter struct {
	BoardController *controller.BoardController
}

func NewBoardRouter(boardController *controller.BoardController) *BoardRouter {
	return &BoardRouter{BoardController: boardController}
}

func (r *BoardRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	privateRoutes := v1.Group("/private")

	boardRoutes := privateRoutes.Group("/board", mw.AuthMiddleware())
	boardRoutes.GET("/:courseID", r.BoardController.ListPosts)
	boardRoutes.GET("/posts/:id", r.BoardController.GetPost)
}

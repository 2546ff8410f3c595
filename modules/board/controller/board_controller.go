package controller

import (
	"allmeet-api/core/controller"
	"allmeet-api/core/errors"
	"allmeet-api/core/params"
	"allmeet-api/modules/board/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type BoardController struct {
	controller.BaseController
	BoardService service.BoardServiceInterface
}

func NewBoardController(svc service.BoardServiceInterface) *BoardController {
	return &BoardController{
		BaseController: controller.NewBaseController(),
		BoardService:   svc,
	}
}

// GetPost handles GET /board/posts/:id
func (c *BoardController) GetPost(ctx echo.Context) error {
	postID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid post ID")
	}

	result, appErr := c.BoardService.GetPost(ctx.Request().Context(), postID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}

// ListPosts handles GET /board/:courseID
func (c *BoardController) ListPosts(ctx echo.Context) error {
	category := ctx.QueryParam("category")
	if category == "" {
		category = "general"
	}

	posts, total, appErr := c.BoardService.ListPosts(ctx.Request().Context(), ctx.Param("courseID"), category, params.FromContext(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, map[string]any{
		"items":       posts,
		"total_items": total,
	}, "Success")
}

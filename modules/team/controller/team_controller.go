package controller

import (
	"allmeet-api/core/constants"
	"allmeet-api/core/controller"
	"allmeet-api/core/errors"
	"allmeet-api/core/utils"
	"allmeet-api/modules/team/dto"
	"allmeet-api/modules/team/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type TeamController struct {
	controller.BaseController
	TeamService service.TeamServiceInterface
}

func NewTeamController(svc service.TeamServiceInterface) *TeamController {
	return &TeamController{
		BaseController: controller.NewBaseController(),
		TeamService:    svc,
	}
}

func (c *TeamController) getUserIDFromContext(ctx echo.Context) (uuid.UUID, error) {
	tokenData := ctx.Get(constants.ContextTokenData)
	if tokenData == nil {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "User not authenticated", nil)
	}

	claims, ok := tokenData.(*utils.TokenClaims)
	if !ok {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid token data", nil)
	}

	return claims.UserID, nil
}

// CreateRecruitment handles POST /recruit
func (c *TeamController) CreateRecruitment(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.CreateRecruitmentRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	result, appErr := c.TeamService.CreateRecruitment(ctx.Request().Context(), userID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Recruitment created")
}

// ListByCourse handles GET /recruit/:courseID
func (c *TeamController) ListByCourse(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	result, appErr := c.TeamService.ListByCourse(ctx.Request().Context(), ctx.Param("courseID"), userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}

// JoinTeam handles POST /recruit/:id/join
func (c *TeamController) JoinTeam(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	teamID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid team ID")
	}

	result, appErr := c.TeamService.JoinTeam(ctx.Request().Context(), teamID, userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Joined team")
}

// LeaveTeam handles DELETE /recruit/:id/leave
func (c *TeamController) LeaveTeam(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	teamID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid team ID")
	}

	if appErr := c.TeamService.LeaveTeam(ctx.Request().Context(), teamID, userID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, nil, "Left team")
}

// GetMembers handles GET /recruit/:id/members
func (c *TeamController) GetMembers(ctx echo.Context) error {
	if _, err := c.getUserIDFromContext(ctx); err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	teamID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid team ID")
	}

	result, appErr := c.TeamService.GetMembers(ctx.Request().Context(), teamID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}

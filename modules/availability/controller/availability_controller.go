package controller

import (
	"allmeet-api/core/constants"
	"allmeet-api/core/controller"
	"allmeet-api/core/errors"
	"allmeet-api/core/utils"
	"allmeet-api/modules/availability/dto"
	"allmeet-api/modules/availability/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AvailabilityController struct {
	controller.BaseController
	AvailabilityService service.AvailabilityServiceInterface
}

func NewAvailabilityController(svc service.AvailabilityServiceInterface) *AvailabilityController {
	return &AvailabilityController{
		BaseController:      controller.NewBaseController(),
		AvailabilityService: svc,
	}
}

func (c *AvailabilityController) getUserIDFromContext(ctx echo.Context) (uuid.UUID, error) {
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

// AddTime handles POST /available
func (c *AvailabilityController) AddTime(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.AddTimeRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	result, appErr := c.AvailabilityService.AddTime(ctx.Request().Context(), userID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, result.Message)
}

// GetMyTimes handles GET /available
func (c *AvailabilityController) GetMyTimes(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	result, appErr := c.AvailabilityService.GetMyTimes(ctx.Request().Context(), userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}

// DeleteTime handles DELETE /available/:id
func (c *AvailabilityController) DeleteTime(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	timeID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid availability ID")
	}

	if appErr := c.AvailabilityService.DeleteTime(ctx.Request().Context(), userID, timeID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, nil, "Availability deleted")
}

// GetTeamCommonTimes handles GET /available/team/:id
func (c *AvailabilityController) GetTeamCommonTimes(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	teamID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid team ID")
	}

	result, appErr := c.AvailabilityService.GetTeamCommonTimes(ctx.Request().Context(), teamID, userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}

// AutoRecommend handles POST /available/team/:id/auto-recommend
func (c *AvailabilityController) AutoRecommend(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	teamID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid team ID")
	}

	result, appErr := c.AvailabilityService.AutoRecommend(ctx.Request().Context(), teamID, userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Recommendation evaluated")
}

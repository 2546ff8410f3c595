package controller

import (
	"allmeet-api/core/constants"
	"allmeet-api/core/controller"
	"allmeet-api/core/errors"
	"allmeet-api/core/params"
	"allmeet-api/core/utils"
	"allmeet-api/modules/notification/dto"
	"allmeet-api/modules/notification/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type NotificationController struct {
	controller.BaseController
	NotificationService *service.NotificationService
}

func NewNotificationController(svc *service.NotificationService) *NotificationController {
	return &NotificationController{
		BaseController:      controller.NewBaseController(),
		NotificationService: svc,
	}
}

func (c *NotificationController) getUserIDFromContext(ctx echo.Context) (uuid.UUID, error) {
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

// GetMyNotifications handles GET /notifications
func (c *NotificationController) GetMyNotifications(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	result, err := c.NotificationService.GetMyNotifications(ctx.Request().Context(), userID, params.FromContext(ctx))
	if err != nil {
		return c.InternalServerError(errors.ErrInternalServer, "Failed to get notifications")
	}

	return c.SuccessResponse(ctx, result, "Success")
}

// CountUnread handles GET /notifications/unread-count
func (c *NotificationController) CountUnread(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	count, err := c.NotificationService.CountUnread(ctx.Request().Context(), userID)
	if err != nil {
		return c.InternalServerError(errors.ErrInternalServer, "Failed to count unread notifications")
	}

	return c.SuccessResponse(ctx, dto.UnreadCountResponse{Count: count}, "Success")
}

// MarkAsRead handles PATCH /notifications/read
func (c *NotificationController) MarkAsRead(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.MarkReadRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	if err := c.NotificationService.MarkAsRead(ctx.Request().Context(), userID, req.IDs); err != nil {
		return c.InternalServerError(errors.ErrInternalServer, "Failed to mark notifications as read")
	}

	return c.SuccessResponse(ctx, nil, "Notifications marked as read")
}

// MarkAllAsRead handles PATCH /notifications/read-all
func (c *NotificationController) MarkAllAsRead(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	if err := c.NotificationService.MarkAllAsRead(ctx.Request().Context(), userID); err != nil {
		return c.InternalServerError(errors.ErrInternalServer, "Failed to mark notifications as read")
	}

	return c.SuccessResponse(ctx, nil, "All notifications marked as read")
}

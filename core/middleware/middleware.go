package middleware

import (
	"net/http"
	"strings"

	"allmeet-api/core/constants"
	"allmeet-api/core/controller"
	"allmeet-api/core/errors"
	"allmeet-api/core/utils"

	"github.com/labstack/echo/v4"
)

type Middleware struct{}

func NewMiddleware() *Middleware {
	return &Middleware{}
}

// AuthMiddleware verifies the bearer token and stores the parsed claims in
// the echo context under constants.ContextTokenData.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return controller.NewErrorResponse(http.StatusUnauthorized,
					errors.ErrMissingAuthorizationHeader, "missing authorization header")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return controller.NewErrorResponse(http.StatusUnauthorized,
					errors.ErrInvalidTokenFormat, "authorization header must be a bearer token")
			}

			claims, appErr := utils.ValidateAndParseToken(parts[1])
			if appErr != nil {
				return controller.NewErrorResponse(http.StatusUnauthorized, appErr.Code, appErr.Message)
			}

			c.Set(constants.ContextTokenData, claims)
			return next(c)
		}
	}
}

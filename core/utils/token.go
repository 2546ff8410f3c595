package utils

import (
	stderrors "errors"
	"time"

	"allmeet-api/core/config"
	"allmeet-api/core/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims is the authenticated identity attached to each request.
// Credential validation itself happens in the external identity service; this
// API only verifies and reads the token it issued.
type TokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}

func GenerateToken(userID uuid.UUID) (string, error) {
	cfg := config.Get()
	claims := &TokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(cfg.JWT.ExpiryHours) * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWT.Secret))
}

func ValidateAndParseToken(tokenString string) (*TokenClaims, *errors.AppError) {
	cfg, ok := config.GetSafe()
	if !ok {
		return nil, errors.NewAppError(errors.ErrInternalServer, "config not initialized", nil)
	}

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, stderrors.New("unexpected signing method")
		}
		return []byte(cfg.JWT.Secret), nil
	})
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.NewAppError(errors.ErrTokenExpired, "token expired", err)
		}
		return nil, errors.NewAppError(errors.ErrInvalidTokenFormat, "invalid token", err)
	}
	if !token.Valid || claims.UserID == uuid.Nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "invalid token claims", nil)
	}
	return claims, nil
}

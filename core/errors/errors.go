package errors

type ErrorCode string

const (
	ErrInternalServer             ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrInvalidInput               ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData         ErrorCode = "INVALID_REQUEST_DATA"
	ErrUnauthorized               ErrorCode = "UNAUTHORIZED"
	ErrTokenExpired               ErrorCode = "TOKEN_EXPIRED"
	ErrInvalidTokenFormat         ErrorCode = "INVALID_TOKEN_FORMAT"
	ErrMissingAuthorizationHeader ErrorCode = "MISSING_AUTHORIZATION_HEADER"
	ErrForbidden                  ErrorCode = "FORBIDDEN"
	ErrNotFound                   ErrorCode = "NOT_FOUND"
	ErrAlreadyExists              ErrorCode = "ALREADY_EXISTS"

	// Team scheduling domain
	ErrTeamNotFound  ErrorCode = "TEAM_NOT_FOUND"
	ErrNotTeamMember ErrorCode = "NOT_TEAM_MEMBER"
	ErrTeamFull      ErrorCode = "TEAM_FULL"
)

// AppError is the application-level error carried from services up to the
// HTTP layer, where Code is mapped to a status.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

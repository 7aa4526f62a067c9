package users

import "github.com/Sulaiman-F/wthqh-backend/internal/shared/apperr"

var (
	ErrNotFound           = apperr.NotFound("user not found")
	ErrEmailTaken         = apperr.Conflict("email is already registered")
	ErrInvalidCredentials = apperr.Unauthorized("invalid email or password")
	ErrInvalidRefresh     = apperr.Unauthorized("invalid or expired refresh token")
	ErrPasswordTooLong    = apperr.Validation("password must be at most 72 bytes")
)

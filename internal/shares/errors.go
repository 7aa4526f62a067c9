package shares

import (
	"errors"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/apperr"
)

var (
	ErrNotFound      = apperr.NotFound("share link not found")
	ErrExpired       = apperr.Gone("share link has expired")
	ErrInvalidExpiry = apperr.Validation("expiresInHours must be a positive number")
	// ErrTokenTaken is returned by Repo.Insert on a token collision.
	ErrTokenTaken = errors.New("share token already exists")
)

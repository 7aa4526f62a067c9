package folders

import "github.com/Sulaiman-F/wthqh-backend/internal/shared/apperr"

var (
	ErrNotFound       = apperr.NotFound("folder not found")
	ErrParentNotFound = apperr.NotFound("parent folder not found")
	ErrNameTaken      = apperr.Conflict("a folder with this name already exists here")
	ErrNotEmpty       = apperr.Conflict("folder is not empty")
	ErrForbidden      = apperr.Forbidden("forbidden")
	ErrNameRequired   = apperr.Validation("name is required")
)

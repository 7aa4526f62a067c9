package versions

import "github.com/Sulaiman-F/wthqh-backend/internal/shared/apperr"

var (
	ErrNotFound         = apperr.NotFound("version not found")
	ErrNoVersions       = apperr.NotFound("document has no versions")
	ErrDuplicateVersion = apperr.Conflict("version number already taken")
	ErrAppendContention = apperr.Conflict("too many concurrent uploads for this document, please retry")
)

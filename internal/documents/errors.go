package documents

import "github.com/Sulaiman-F/wthqh-backend/internal/shared/apperr"

var (
	ErrNotFound       = apperr.NotFound("document not found")
	ErrForbidden      = apperr.Forbidden("forbidden")
	ErrFolderNotFound = apperr.NotFound("folder not found")
	ErrTitleRequired  = apperr.Validation("title is required")
	ErrFolderRequired = apperr.Validation("folderId is required")
	ErrFileRequired   = apperr.Validation("file is required")
	ErrNotPDF         = apperr.Validation("only PDF files are allowed")
)

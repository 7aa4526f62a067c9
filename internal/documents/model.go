package documents

import (
	"io"
	"time"

	"github.com/Sulaiman-F/wthqh-backend/internal/versions"
)

// Document is the metadata record for a versioned PDF. The payload lives in
// the version ledger; a document always has at least one version.
type Document struct {
	ID          string
	Title       string
	Description *string
	Tags        []string
	OwnerID     string
	FolderID    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Upload is a file received from a client. Body must stay readable until the
// service call returns.
type Upload struct {
	FileName    string
	ContentType string
	Body        io.ReaderAt
	Size        int64
}

// CreateInput carries the fields for a new document and its first version.
type CreateInput struct {
	Title       string
	Description *string
	Tags        []string
	FolderID    string
	File        *Upload
}

// Patch is a partial metadata update. Nil fields are left unchanged; a
// Description pointing at an empty string clears it.
type Patch struct {
	Title       *string
	Description *string
	Tags        *[]string
}

// Download is an open version stream. Callers must close Body.
type Download struct {
	Document Document
	Version  versions.Version
	Body     io.ReadCloser
}

// Package blob defines the opaque binary store that version payloads live in.
// A ref is only meaningful to the backend that issued it.
package blob

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/apperr"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/util"
)

// ErrNotFound is returned by Open for refs the store does not know.
var ErrNotFound = apperr.NotFound("file not found")

// Blob describes a stored payload.
type Blob struct {
	Ref         string
	DisplayName string
	ContentType string
	SizeBytes   int64
	Checksum    string
	CreatedAt   time.Time
}

// Store is an append-only binary store. Blobs are never mutated or deleted.
type Store interface {
	// Put stores r in full and returns its ref, or an error with nothing stored.
	Put(ctx context.Context, r io.Reader, contentType, displayName string) (Blob, error)
	// Open returns a single-pass stream of the blob's bytes.
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	// SearchNames returns refs whose display name contains substr, ignoring case.
	SearchNames(ctx context.Context, substr string) ([]string, error)
}

// StoredName returns the sanitized display name, falling back to a generic
// name when the client supplied nothing usable.
func StoredName(displayName string) string {
	name, err := util.SanitizeFileName(displayName)
	if err != nil {
		return "document.pdf"
	}
	return name
}

// NewRef builds a unique ref of the form <random-hex>_<name>.
func NewRef(name string) (string, error) {
	prefix, err := util.RandomHex(16)
	if err != nil {
		return "", err
	}
	return prefix + "_" + name, nil
}

// NameFromRef extracts the display name portion of a ref built by NewRef.
func NameFromRef(ref string) string {
	if i := strings.IndexByte(ref, '_'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// ContainsFold reports whether name contains substr, ignoring case. substr is
// matched literally.
func ContainsFold(name, substr string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(substr))
}

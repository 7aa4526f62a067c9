package documents

import (
	"context"
	"time"

	"github.com/Sulaiman-F/wthqh-backend/internal/versions"
)

// Repo defines persistence operations for documents.
type Repo interface {
	// CreateWithVersion stores doc and its first version atomically.
	CreateWithVersion(ctx context.Context, doc Document, first versions.Version) error
	GetByID(ctx context.Context, id string) (Document, error)
	GetMany(ctx context.Context, ids []string) ([]Document, error)
	Update(ctx context.Context, doc Document) error
	Touch(ctx context.Context, id string, at time.Time) error
	// ListByOwner returns newest-updated first; a nil folderID means all folders.
	ListByOwner(ctx context.Context, ownerID string, folderID *string) ([]Document, error)
	ListInFolder(ctx context.Context, folderID string) ([]Document, error)
	CountInFolder(ctx context.Context, folderID string) (int, error)
	// SearchMetadata matches substr literally and case-insensitively against
	// title, description and tags. An empty ownerID searches every owner.
	SearchMetadata(ctx context.Context, ownerID, substr string) ([]Document, error)
}

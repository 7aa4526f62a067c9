package versions

import "context"

// Repo persists ledger entries. Insert must reject a second row with the same
// (DocumentID, VersionNumber) with ErrDuplicateVersion.
type Repo interface {
	Count(ctx context.Context, documentID string) (int, error)
	Insert(ctx context.Context, v Version) error
	ListByDocument(ctx context.Context, documentID string) ([]Version, error)
	Latest(ctx context.Context, documentID string) (Version, error)
	GetByID(ctx context.Context, id string) (Version, error)
	DocumentIDsForBlobs(ctx context.Context, refs []string) ([]string, error)
}

package folders

import (
	"context"
	"time"
)

// Repo persists folders. Create and Rename must reject a sibling name
// collision (same owner and parent) with ErrNameTaken.
type Repo interface {
	Create(ctx context.Context, f Folder) error
	GetByID(ctx context.Context, id string) (Folder, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Folder, error)
	ListChildren(ctx context.Context, ownerID string, parentID *string) ([]Folder, error)
	Rename(ctx context.Context, id, name string, updatedAt time.Time) error
	CountChildren(ctx context.Context, id string) (int, error)
	Delete(ctx context.Context, id string) error
}

// DocumentCounter reports how many documents reference a folder.
type DocumentCounter interface {
	CountInFolder(ctx context.Context, folderID string) (int, error)
}

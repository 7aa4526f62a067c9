package audit

import "context"

// Repo persists audit entries.
type Repo interface {
	Insert(ctx context.Context, e Entry) error
	List(ctx context.Context, limit int) ([]Entry, error)
}

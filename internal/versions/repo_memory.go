package versions

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu    sync.RWMutex
	byID  map[string]Version
	byDoc map[string][]string // documentID -> version IDs in insert order
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:  make(map[string]Version),
		byDoc: make(map[string][]string),
	}
}

func (r *MemoryRepo) Count(ctx context.Context, documentID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byDoc[documentID]), nil
}

// Insert checks number uniqueness and stores v under one lock.
func (r *MemoryRepo) Insert(ctx context.Context, v Version) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.byDoc[v.DocumentID] {
		if r.byID[id].VersionNumber == v.VersionNumber {
			return ErrDuplicateVersion
		}
	}
	r.byID[v.ID] = v
	r.byDoc[v.DocumentID] = append(r.byDoc[v.DocumentID], v.ID)
	return nil
}

// ListByDocument returns versions newest first.
func (r *MemoryRepo) ListByDocument(ctx context.Context, documentID string) ([]Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	ids := r.byDoc[documentID]
	out := make([]Version, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.byID[id])
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].VersionNumber > out[j].VersionNumber
	})
	return out, nil
}

func (r *MemoryRepo) Latest(ctx context.Context, documentID string) (Version, error) {
	list, err := r.ListByDocument(ctx, documentID)
	if err != nil {
		return Version{}, err
	}
	if len(list) == 0 {
		return Version{}, ErrNoVersions
	}
	return list[0], nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Version, error) {
	if err := ctx.Err(); err != nil {
		return Version{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.byID[id]
	if !ok {
		return Version{}, ErrNotFound
	}
	return v, nil
}

func (r *MemoryRepo) DocumentIDsForBlobs(ctx context.Context, refs []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		want[ref] = struct{}{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	var out []string
	for _, v := range r.byID {
		if _, ok := want[v.BlobRef]; !ok {
			continue
		}
		if _, dup := seen[v.DocumentID]; dup {
			continue
		}
		seen[v.DocumentID] = struct{}{}
		out = append(out, v.DocumentID)
	}
	sort.Strings(out)
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)

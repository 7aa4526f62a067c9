package folders

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Folder
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Folder)}
}

func (r *MemoryRepo) Create(ctx context.Context, f Folder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.siblingExistsLocked(f.OwnerID, f.ParentID, f.Name, "") {
		return ErrNameTaken
	}
	r.data[f.ID] = f
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Folder, error) {
	if err := ctx.Err(); err != nil {
		return Folder{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.data[id]
	if !ok {
		return Folder{}, ErrNotFound
	}
	return f, nil
}

func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string) ([]Folder, error) {
	return r.list(ctx, func(f Folder) bool { return f.OwnerID == ownerID })
}

func (r *MemoryRepo) ListChildren(ctx context.Context, ownerID string, parentID *string) ([]Folder, error) {
	return r.list(ctx, func(f Folder) bool {
		return f.OwnerID == ownerID && sameParent(f.ParentID, parentID)
	})
}

func (r *MemoryRepo) Rename(ctx context.Context, id, name string, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	if r.siblingExistsLocked(f.OwnerID, f.ParentID, name, id) {
		return ErrNameTaken
	}
	f.Name = name
	f.UpdatedAt = updatedAt
	r.data[id] = f
	return nil
}

func (r *MemoryRepo) CountChildren(ctx context.Context, id string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, f := range r.data {
		if f.ParentID != nil && *f.ParentID == id {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *MemoryRepo) list(ctx context.Context, keep func(Folder) bool) ([]Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Folder, 0)
	for _, f := range r.data {
		if keep(f) {
			out = append(out, f)
		}
	}
	r.mu.RUnlock()
	sortByName(out)
	return out, nil
}

func (r *MemoryRepo) siblingExistsLocked(ownerID string, parentID *string, name, exceptID string) bool {
	for id, f := range r.data {
		if id == exceptID {
			continue
		}
		if f.OwnerID == ownerID && f.Name == name && sameParent(f.ParentID, parentID) {
			return true
		}
	}
	return false
}

func sortByName(list []Folder) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name == list[j].Name {
			return list[i].ID < list[j].ID
		}
		return list[i].Name < list[j].Name
	})
}

var _ Repo = (*MemoryRepo)(nil)

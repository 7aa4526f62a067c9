package documents

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Sulaiman-F/wthqh-backend/internal/versions"
)

// MemoryRepo is an in-memory implementation of Repo. First versions are
// written to Versions while the document lock is held.
type MemoryRepo struct {
	mu       sync.RWMutex
	data     map[string]Document
	Versions versions.Repo
}

// NewMemoryRepo constructs a MemoryRepo backed by the given version repo.
func NewMemoryRepo(vr versions.Repo) *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Document), Versions: vr}
}

func (r *MemoryRepo) CreateWithVersion(ctx context.Context, doc Document, first versions.Version) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Versions != nil {
		if err := r.Versions.Insert(ctx, first); err != nil {
			return err
		}
	}
	r.data[doc.ID] = cloneDoc(doc)
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return cloneDoc(doc), nil
}

func (r *MemoryRepo) GetMany(ctx context.Context, ids []string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := r.data[id]; ok {
			out = append(out, cloneDoc(doc))
		}
	}
	return out, nil
}

func (r *MemoryRepo) Update(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.data[doc.ID]
	if !ok {
		return ErrNotFound
	}
	cur.Title = doc.Title
	cur.Description = doc.Description
	cur.Tags = doc.Tags
	cur.UpdatedAt = doc.UpdatedAt
	r.data[doc.ID] = cloneDoc(cur)
	return nil
}

func (r *MemoryRepo) Touch(ctx context.Context, id string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	doc.UpdatedAt = at
	r.data[id] = doc
	return nil
}

func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string, folderID *string) ([]Document, error) {
	return r.list(ctx, func(d Document) bool {
		return d.OwnerID == ownerID && (folderID == nil || d.FolderID == *folderID)
	})
}

func (r *MemoryRepo) ListInFolder(ctx context.Context, folderID string) ([]Document, error) {
	return r.list(ctx, func(d Document) bool { return d.FolderID == folderID })
}

func (r *MemoryRepo) CountInFolder(ctx context.Context, folderID string) (int, error) {
	list, err := r.ListInFolder(ctx, folderID)
	return len(list), err
}

func (r *MemoryRepo) SearchMetadata(ctx context.Context, ownerID, substr string) ([]Document, error) {
	needle := strings.ToLower(substr)
	return r.list(ctx, func(d Document) bool {
		if ownerID != "" && d.OwnerID != ownerID {
			return false
		}
		return matchesMetadata(d, needle)
	})
}

func (r *MemoryRepo) list(ctx context.Context, keep func(Document) bool) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Document, 0)
	for _, d := range r.data {
		if keep(d) {
			out = append(out, cloneDoc(d))
		}
	}
	r.mu.RUnlock()
	sortNewestFirst(out)
	return out, nil
}

func matchesMetadata(d Document, needle string) bool {
	if strings.Contains(strings.ToLower(d.Title), needle) {
		return true
	}
	if d.Description != nil && strings.Contains(strings.ToLower(*d.Description), needle) {
		return true
	}
	for _, tag := range d.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func sortNewestFirst(list []Document) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].UpdatedAt.After(list[j].UpdatedAt)
	})
}

func cloneDoc(d Document) Document {
	if d.Tags != nil {
		d.Tags = append([]string(nil), d.Tags...)
	}
	if d.Description != nil {
		desc := *d.Description
		d.Description = &desc
	}
	return d
}

var _ Repo = (*MemoryRepo)(nil)

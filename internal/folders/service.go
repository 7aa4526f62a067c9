package folders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sulaiman-F/wthqh-backend/internal/audit"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/auth"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/util"
)

// Service contains business logic for the folder hierarchy.
type Service struct {
	Repo      Repo
	Documents DocumentCounter
	Audit     audit.Recorder
	Now       func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo, docs DocumentCounter, rec audit.Recorder) *Service {
	return &Service{Repo: repo, Documents: docs, Audit: rec, Now: time.Now}
}

// Create adds a folder under parentID, or at the root when parentID is nil.
func (s *Service) Create(ctx context.Context, p auth.Principal, name string, parentID *string) (Folder, error) {
	name, err := cleanName(name)
	if err != nil {
		return Folder{}, err
	}
	parentID = normalizeID(parentID)
	if parentID != nil {
		parent, err := s.Repo.GetByID(ctx, *parentID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return Folder{}, ErrParentNotFound
			}
			return Folder{}, err
		}
		if parent.OwnerID != p.UserID {
			return Folder{}, ErrParentNotFound
		}
	}

	now := s.now()
	f := Folder{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   p.UserID,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, f); err != nil {
		return Folder{}, err
	}
	s.record(ctx, p, audit.ActionFolderCreate, f.ID, map[string]any{"name": f.Name, "parentId": parentID})
	return f, nil
}

// Get returns a folder the principal may see.
func (s *Service) Get(ctx context.Context, p auth.Principal, id string) (Folder, error) {
	f, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Folder{}, err
	}
	if !p.CanAccess(f.OwnerID) {
		return Folder{}, ErrForbidden
	}
	return f, nil
}

// ListChildren lists the caller's folders directly under parentID, sorted by
// name. A nil parentID lists root folders.
func (s *Service) ListChildren(ctx context.Context, p auth.Principal, parentID *string) ([]Folder, error) {
	return s.Repo.ListChildren(ctx, p.UserID, normalizeID(parentID))
}

// Tree returns every folder owned by the caller as a forest. Folders whose
// parent cannot be resolved are promoted to roots.
func (s *Service) Tree(ctx context.Context, p auth.Principal) ([]*Node, error) {
	list, err := s.Repo.ListByOwner(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return BuildTree(list), nil
}

// BuildTree assembles a forest from a flat list. Siblings keep the name order
// of the input after sorting.
func BuildTree(list []Folder) []*Node {
	sorted := make([]Folder, len(list))
	copy(sorted, list)
	sortByName(sorted)

	nodes := make(map[string]*Node, len(sorted))
	for _, f := range sorted {
		nodes[f.ID] = &Node{Folder: f, Children: []*Node{}}
	}

	roots := make([]*Node, 0)
	for _, f := range sorted {
		n := nodes[f.ID]
		if f.ParentID != nil {
			if parent, ok := nodes[*f.ParentID]; ok && parent != n {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}

// Rename changes a folder's name after checking siblings for a collision.
func (s *Service) Rename(ctx context.Context, p auth.Principal, id, name string) (Folder, error) {
	name, err := cleanName(name)
	if err != nil {
		return Folder{}, err
	}
	f, err := s.Get(ctx, p, id)
	if err != nil {
		return Folder{}, err
	}
	if f.Name == name {
		return f, nil
	}

	siblings, err := s.Repo.ListChildren(ctx, f.OwnerID, f.ParentID)
	if err != nil {
		return Folder{}, err
	}
	for _, sib := range siblings {
		if sib.ID != f.ID && sib.Name == name {
			return Folder{}, ErrNameTaken
		}
	}

	now := s.now()
	if err := s.Repo.Rename(ctx, f.ID, name, now); err != nil {
		return Folder{}, err
	}
	old := f.Name
	f.Name = name
	f.UpdatedAt = now
	s.record(ctx, p, audit.ActionFolderRename, f.ID, map[string]any{"from": old, "to": name})
	return f, nil
}

// Delete removes an empty folder. A folder that still holds child folders or
// documents is rejected with ErrNotEmpty and left untouched.
func (s *Service) Delete(ctx context.Context, p auth.Principal, id string) error {
	f, err := s.Get(ctx, p, id)
	if err != nil {
		return err
	}

	children, err := s.Repo.CountChildren(ctx, f.ID)
	if err != nil {
		return err
	}
	if children > 0 {
		return ErrNotEmpty
	}
	if s.Documents != nil {
		docs, err := s.Documents.CountInFolder(ctx, f.ID)
		if err != nil {
			return err
		}
		if docs > 0 {
			return ErrNotEmpty
		}
	}

	if err := s.Repo.Delete(ctx, f.ID); err != nil {
		return err
	}
	s.record(ctx, p, audit.ActionFolderDelete, f.ID, map[string]any{"name": f.Name})
	return nil
}

// ResolveForDocument returns the folder a document may be placed in. Folders
// the principal does not own are reported as missing unless the principal is
// an admin.
func (s *Service) ResolveForDocument(ctx context.Context, p auth.Principal, id string) (Folder, error) {
	f, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Folder{}, err
	}
	if !p.CanAccess(f.OwnerID) {
		return Folder{}, ErrNotFound
	}
	return f, nil
}

func (s *Service) record(ctx context.Context, p auth.Principal, action, id string, meta map[string]any) {
	if s.Audit == nil {
		return
	}
	s.Audit.Record(ctx, p.UserID, action, audit.EntityFolder, id, meta)
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func cleanName(name string) (string, error) {
	name = util.SanitizeText(name)
	if name == "" {
		return "", ErrNameRequired
	}
	return name, nil
}

func normalizeID(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

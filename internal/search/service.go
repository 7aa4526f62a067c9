// Package search finds documents by metadata and by stored file name.
package search

import (
	"context"
	"strings"

	"github.com/Sulaiman-F/wthqh-backend/internal/documents"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/apperr"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/auth"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/storage/blob"
)

var ErrQueryRequired = apperr.Validation("q is required")

// Documents is the document registry view used by search.
type Documents interface {
	SearchMetadata(ctx context.Context, p auth.Principal, q string) ([]documents.Document, error)
	Visible(ctx context.Context, p auth.Principal, ids []string) ([]documents.Document, error)
}

// BlobIndex maps blob refs to the documents whose versions reference them.
type BlobIndex interface {
	DocumentIDsForBlobs(ctx context.Context, refs []string) ([]string, error)
}

// Service runs searches.
type Service struct {
	Docs     Documents
	Blobs    blob.Store
	Versions BlobIndex
}

// NewService constructs a Service.
func NewService(docs Documents, blobs blob.Store, idx BlobIndex) *Service {
	return &Service{Docs: docs, Blobs: blobs, Versions: idx}
}

// Search returns metadata matches followed by file-name matches, each
// document at most once.
func (s *Service) Search(ctx context.Context, p auth.Principal, q string) ([]documents.Document, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ErrQueryRequired
	}

	byMeta, err := s.Docs.SearchMetadata(ctx, p, q)
	if err != nil {
		return nil, err
	}
	byName, err := s.byFileName(ctx, p, q)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(byMeta)+len(byName))
	out := make([]documents.Document, 0, len(byMeta)+len(byName))
	for _, list := range [][]documents.Document{byMeta, byName} {
		for _, d := range list {
			if _, dup := seen[d.ID]; dup {
				continue
			}
			seen[d.ID] = struct{}{}
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Service) byFileName(ctx context.Context, p auth.Principal, q string) ([]documents.Document, error) {
	if s.Blobs == nil || s.Versions == nil {
		return nil, nil
	}
	refs, err := s.Blobs.SearchNames(ctx, q)
	if err != nil || len(refs) == 0 {
		return nil, err
	}
	ids, err := s.Versions.DocumentIDsForBlobs(ctx, refs)
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	return s.Docs.Visible(ctx, p, ids)
}

package shares

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Sulaiman-F/wthqh-backend/internal/audit"
	"github.com/Sulaiman-F/wthqh-backend/internal/documents"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/apperr"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/auth"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/metrics"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/util"
)

const (
	tokenBytes    = 24
	tokenAttempts = 3
)

var maxExpiryHours = float64(math.MaxInt64) / float64(time.Hour)

// DocumentAccess is the slice of the document registry shares depend on.
type DocumentAccess interface {
	Get(ctx context.Context, p auth.Principal, id string) (documents.Document, error)
	OpenLatestUnchecked(ctx context.Context, id string) (documents.Download, error)
}

// Service issues and resolves share tokens.
type Service struct {
	Repo     Repo
	Docs     DocumentAccess
	Audit    audit.Recorder
	Now      func() time.Time
	NewToken func() (string, error)
}

// NewService constructs a Service.
func NewService(repo Repo, docs DocumentAccess, rec audit.Recorder) *Service {
	return &Service{Repo: repo, Docs: docs, Audit: rec, Now: time.Now, NewToken: newToken}
}

func newToken() (string, error) {
	return util.RandomHex(tokenBytes)
}

// Create issues a token for documentID. A nil expiresInHours never expires.
func (s *Service) Create(ctx context.Context, p auth.Principal, documentID string, expiresInHours *float64) (Share, error) {
	var ttl time.Duration
	if expiresInHours != nil {
		h := *expiresInHours
		if math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 || h >= maxExpiryHours {
			return Share{}, ErrInvalidExpiry
		}
		ttl = time.Duration(h * float64(time.Hour))
	}

	doc, err := s.Docs.Get(ctx, p, documentID)
	if err != nil {
		return Share{}, err
	}

	now := s.now()
	share := Share{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		CreatedBy:  p.UserID,
		CreatedAt:  now,
	}
	if expiresInHours != nil {
		exp := now.Add(ttl)
		share.ExpiresAt = &exp
	}

	gen := s.NewToken
	if gen == nil {
		gen = newToken
	}
	for attempt := 1; ; attempt++ {
		token, err := gen()
		if err != nil {
			return Share{}, apperr.Internal("generate share token", err)
		}
		share.Token = token
		err = s.Repo.Insert(ctx, share)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrTokenTaken) {
			return Share{}, err
		}
		if attempt >= tokenAttempts {
			return Share{}, apperr.Internal("share token collisions exhausted", err)
		}
	}

	metrics.IncSharesCreated()
	if s.Audit != nil {
		meta := map[string]any{"documentId": doc.ID}
		if share.ExpiresAt != nil {
			meta["expiresAt"] = share.ExpiresAt.Format(time.RFC3339)
		}
		s.Audit.Record(ctx, p.UserID, audit.ActionShareCreate, audit.EntityShare, share.ID, meta)
	}
	return share, nil
}

// Resolve looks up a token and checks that it is still valid.
func (s *Service) Resolve(ctx context.Context, token string) (Share, error) {
	if token == "" {
		return Share{}, ErrNotFound
	}
	share, err := s.Repo.GetByToken(ctx, token)
	if err != nil {
		return Share{}, err
	}
	if share.Expired(s.now()) {
		return Share{}, ErrExpired
	}
	return share, nil
}

// Open resolves token and opens the latest version of its document.
func (s *Service) Open(ctx context.Context, token string) (documents.Download, error) {
	share, err := s.Resolve(ctx, token)
	if err != nil {
		return documents.Download{}, err
	}
	return s.Docs.OpenLatestUnchecked(ctx, share.DocumentID)
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

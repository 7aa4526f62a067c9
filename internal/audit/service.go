package audit

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/apperr"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/auth"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/telemetry"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Recorder is the write side used by other components.
type Recorder interface {
	Record(ctx context.Context, userID, action, entityType, entityID string, meta map[string]any)
}

// Service records and lists audit entries.
type Service struct {
	Repo Repo
	Now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: time.Now}
}

// Record stores an entry. Failures are logged and never surface to callers.
func (s *Service) Record(ctx context.Context, userID, action, entityType, entityID string, meta map[string]any) {
	if s == nil || s.Repo == nil {
		return
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	e := Entry{
		ID:         uuid.NewString(),
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Meta:       meta,
		CreatedAt:  now().UTC(),
	}
	if err := s.Repo.Insert(context.WithoutCancel(ctx), e); err != nil {
		telemetry.Error("audit.record_failed", map[string]any{
			"action":    action,
			"entity_id": entityID,
			"error":     err,
		})
	}
}

// List returns the newest entries. Only admins may read the log.
func (s *Service) List(ctx context.Context, p auth.Principal, limit int) ([]Entry, error) {
	if !p.IsAdmin() {
		return nil, apperr.Forbidden("admin access required")
	}
	return s.Repo.List(ctx, ClampLimit(limit))
}

// ClampLimit applies the default and maximum page size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ParseLimit reads a limit query value; anything unparsable yields the default.
func ParseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultLimit
	}
	return ClampLimit(n)
}

var _ Recorder = (*Service)(nil)

package shares

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Insert(ctx context.Context, s Share) error {
	const query = `
INSERT INTO shares (id, document_id, token, expires_at, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	var expiresAt sql.NullTime
	if s.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: *s.ExpiresAt, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query, s.ID, s.DocumentID, s.Token, expiresAt, s.CreatedBy, s.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err, "shares_token_key") {
			return ErrTokenTaken
		}
		return fmt.Errorf("insert share: %w", err)
	}
	return nil
}

func (r *PGRepo) GetByToken(ctx context.Context, token string) (Share, error) {
	const query = `
SELECT id, document_id, token, expires_at, created_by, created_at
FROM shares
WHERE token = $1`

	var (
		s         Share
		expiresAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, query, token).Scan(&s.ID, &s.DocumentID, &s.Token, &expiresAt, &s.CreatedBy, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Share{}, ErrNotFound
		}
		return Share{}, fmt.Errorf("get share: %w", err)
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		s.ExpiresAt = &t
	}
	return s, nil
}

func (r *PGRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM shares WHERE expires_at IS NOT NULL AND expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired shares: %w", err)
	}
	return res.RowsAffected()
}

var _ Repo = (*PGRepo)(nil)

package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Insert(ctx context.Context, e Entry) error {
	const query = `
INSERT INTO audit_logs (id, user_id, action, entity_type, entity_id, meta, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	meta := e.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode audit meta: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, query,
		e.ID,
		nullString(e.UserID),
		e.Action,
		e.EntityType,
		nullString(e.EntityID),
		raw,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *PGRepo) List(ctx context.Context, limit int) ([]Entry, error) {
	const query = `
SELECT id, user_id, action, entity_type, entity_id, meta, created_at
FROM audit_logs
ORDER BY created_at DESC
LIMIT $1`

	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e        Entry
			userID   sql.NullString
			entityID sql.NullString
			raw      []byte
		)
		if err := rows.Scan(&e.ID, &userID, &e.Action, &e.EntityType, &entityID, &raw, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.UserID = userID.String
		e.EntityID = entityID.String
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &e.Meta); err != nil {
				return nil, fmt.Errorf("decode audit meta: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Repo = (*PGRepo)(nil)

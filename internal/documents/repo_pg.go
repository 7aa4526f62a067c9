package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/storage/db"
	"github.com/Sulaiman-F/wthqh-backend/internal/versions"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, title, description, tags, owner_id, folder_id, created_at, updated_at`

// CreateWithVersion inserts the document row and its first ledger row in one
// transaction.
func (r *PGRepo) CreateWithVersion(ctx context.Context, doc Document, first versions.Version) error {
	const query = `
INSERT INTO documents (` + documentColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			doc.ID,
			doc.Title,
			nullableText(doc.Description),
			tagsOrEmpty(doc.Tags),
			doc.OwnerID,
			doc.FolderID,
			doc.CreatedAt,
			doc.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
		return versions.InsertWith(ctx, tx, first)
	})
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	doc, err := scanDocument(pgtype.NewMap(), r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	return doc, err
}

func (r *PGRepo) GetMany(ctx context.Context, ids []string) ([]Document, error) {
	if len(ids) == 0 {
		return []Document{}, nil
	}
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = ANY($1) ORDER BY updated_at DESC, id ASC`
	return r.query(ctx, query, ids)
}

func (r *PGRepo) Update(ctx context.Context, doc Document) error {
	const query = `
UPDATE documents
SET title = $2, description = $3, tags = $4, updated_at = $5
WHERE id = $1`

	res, err := r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.Title,
		nullableText(doc.Description),
		tagsOrEmpty(doc.Tags),
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Touch(ctx context.Context, id string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE documents SET updated_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("touch document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string, folderID *string) ([]Document, error) {
	if folderID == nil {
		query := `SELECT ` + documentColumns + ` FROM documents WHERE owner_id = $1 ORDER BY updated_at DESC, id ASC`
		return r.query(ctx, query, ownerID)
	}
	query := `SELECT ` + documentColumns + ` FROM documents WHERE owner_id = $1 AND folder_id = $2 ORDER BY updated_at DESC, id ASC`
	return r.query(ctx, query, ownerID, *folderID)
}

func (r *PGRepo) ListInFolder(ctx context.Context, folderID string) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE folder_id = $1 ORDER BY updated_at DESC, id ASC`
	return r.query(ctx, query, folderID)
}

func (r *PGRepo) CountInFolder(ctx context.Context, folderID string) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE folder_id = $1`, folderID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count folder documents: %w", err)
	}
	return n, nil
}

func (r *PGRepo) SearchMetadata(ctx context.Context, ownerID, substr string) ([]Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE ($1 = '' OR owner_id = $1)
  AND (
    title ILIKE $2 ESCAPE '\'
    OR description ILIKE $2 ESCAPE '\'
    OR EXISTS (SELECT 1 FROM unnest(tags) AS t(tag) WHERE t.tag ILIKE $2 ESCAPE '\')
  )
ORDER BY updated_at DESC, id ASC`
	return r.query(ctx, query, ownerID, db.LikePattern(substr))
}

func (r *PGRepo) query(ctx context.Context, query string, args ...any) ([]Document, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	// pgtype.Map caches scan plans and is not safe for concurrent use.
	m := pgtype.NewMap()
	out := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(m, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(m *pgtype.Map, row rowScanner) (Document, error) {
	var (
		doc         Document
		description sql.NullString
		tags        []string
	)
	err := row.Scan(
		&doc.ID,
		&doc.Title,
		&description,
		m.SQLScanner(&tags),
		&doc.OwnerID,
		&doc.FolderID,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	if description.Valid {
		desc := description.String
		doc.Description = &desc
	}
	doc.Tags = tagsOrEmpty(tags)
	return doc, nil
}

func nullableText(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

var _ Repo = (*PGRepo)(nil)

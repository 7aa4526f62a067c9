package versions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/storage/db"
)

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const versionColumns = `id, document_id, version_number, blob_ref, size_bytes, mime_type, checksum, page_count, created_at`

func (r *PGRepo) Count(ctx context.Context, documentID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM document_versions WHERE document_id = $1`, documentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count versions: %w", err)
	}
	return n, nil
}

func (r *PGRepo) Insert(ctx context.Context, v Version) error {
	return InsertWith(ctx, r.DB, v)
}

// InsertWith writes v through ex, which may be a transaction.
func InsertWith(ctx context.Context, ex Execer, v Version) error {
	const query = `
INSERT INTO document_versions (` + versionColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := ex.ExecContext(ctx, query,
		v.ID,
		v.DocumentID,
		v.VersionNumber,
		v.BlobRef,
		v.SizeBytes,
		v.MimeType,
		v.Checksum,
		v.PageCount,
		v.CreatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return ErrDuplicateVersion
		}
		return fmt.Errorf("insert version: %w", err)
	}
	return nil
}

func (r *PGRepo) ListByDocument(ctx context.Context, documentID string) ([]Version, error) {
	query := `SELECT ` + versionColumns + ` FROM document_versions WHERE document_id = $1 ORDER BY version_number DESC`
	rows, err := r.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var out []Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PGRepo) Latest(ctx context.Context, documentID string) (Version, error) {
	query := `SELECT ` + versionColumns + ` FROM document_versions WHERE document_id = $1 ORDER BY version_number DESC LIMIT 1`
	v, err := scanVersion(r.DB.QueryRowContext(ctx, query, documentID))
	if errors.Is(err, sql.ErrNoRows) {
		return Version{}, ErrNoVersions
	}
	return v, err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Version, error) {
	query := `SELECT ` + versionColumns + ` FROM document_versions WHERE id = $1`
	v, err := scanVersion(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Version{}, ErrNotFound
	}
	return v, err
}

func (r *PGRepo) DocumentIDsForBlobs(ctx context.Context, refs []string) ([]string, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT DISTINCT document_id FROM document_versions WHERE blob_ref = ANY($1) ORDER BY document_id`, refs)
	if err != nil {
		return nil, fmt.Errorf("documents for blobs: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVersion(row rowScanner) (Version, error) {
	var v Version
	err := row.Scan(
		&v.ID,
		&v.DocumentID,
		&v.VersionNumber,
		&v.BlobRef,
		&v.SizeBytes,
		&v.MimeType,
		&v.Checksum,
		&v.PageCount,
		&v.CreatedAt,
	)
	return v, err
}

var _ Repo = (*PGRepo)(nil)

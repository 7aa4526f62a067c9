package folders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres. Sibling uniqueness is enforced by
// two partial unique indexes, one for root folders and one for nested ones.
type PGRepo struct {
	DB *sql.DB
}

const folderColumns = `id, name, owner_id, parent_id, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, f Folder) error {
	const query = `
INSERT INTO folders (` + folderColumns + `)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.DB.ExecContext(ctx, query,
		f.ID,
		f.Name,
		f.OwnerID,
		nullableID(f.ParentID),
		f.CreatedAt,
		f.UpdatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return ErrNameTaken
		}
		return fmt.Errorf("insert folder: %w", err)
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE id = $1`
	f, err := scanFolder(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Folder{}, ErrNotFound
	}
	return f, err
}

func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string) ([]Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE owner_id = $1 ORDER BY name ASC, id ASC`
	return r.query(ctx, query, ownerID)
}

func (r *PGRepo) ListChildren(ctx context.Context, ownerID string, parentID *string) ([]Folder, error) {
	if parentID == nil {
		query := `SELECT ` + folderColumns + ` FROM folders WHERE owner_id = $1 AND parent_id IS NULL ORDER BY name ASC, id ASC`
		return r.query(ctx, query, ownerID)
	}
	query := `SELECT ` + folderColumns + ` FROM folders WHERE owner_id = $1 AND parent_id = $2 ORDER BY name ASC, id ASC`
	return r.query(ctx, query, ownerID, *parentID)
}

func (r *PGRepo) Rename(ctx context.Context, id, name string, updatedAt time.Time) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE folders SET name = $2, updated_at = $3 WHERE id = $1`, id, name, updatedAt)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return ErrNameTaken
		}
		return fmt.Errorf("rename folder: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) CountChildren(ctx context.Context, id string) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM folders WHERE parent_id = $1`, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("count child folders: %w", err)
	}
	return n, nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM folders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) query(ctx context.Context, query string, args ...any) ([]Folder, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	out := make([]Folder, 0)
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFolder(row rowScanner) (Folder, error) {
	var (
		f        Folder
		parentID sql.NullString
	)
	if err := row.Scan(&f.ID, &f.Name, &f.OwnerID, &parentID, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return Folder{}, err
	}
	if parentID.Valid {
		id := parentID.String
		f.ParentID = &id
	}
	return f, nil
}

func nullableID(id *string) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *id, Valid: true}
}

var _ Repo = (*PGRepo)(nil)

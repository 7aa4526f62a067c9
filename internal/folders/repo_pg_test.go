package folders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGCreateMapsUniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("INSERT INTO folders").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "folders_owner_root_name_uniq"})

	err := repo.Create(context.Background(), Folder{ID: "f", Name: "Reports", OwnerID: "u"})
	if !errors.Is(err, ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRenameNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("UPDATE folders SET name").
		WithArgs("missing", "New", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Rename(context.Background(), "missing", "New", time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGListChildrenRootUsesNullParent(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "name", "owner_id", "parent_id", "created_at", "updated_at"}).
		AddRow("a", "Alpha", "u", nil, now, now).
		AddRow("b", "Beta", "u", nil, now, now)
	mock.ExpectQuery(`parent_id IS NULL`).WithArgs("u").WillReturnRows(rows)

	list, err := repo.ListChildren(context.Background(), "u", nil)
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	if len(list) != 2 || list[0].ParentID != nil || list[1].Name != "Beta" {
		t.Fatalf("unexpected rows: %+v", list)
	}
}

func TestPGGetByIDScansParent(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "name", "owner_id", "parent_id", "created_at", "updated_at"}).
		AddRow("c", "Child", "u", "p", now, now)
	mock.ExpectQuery("SELECT (.+) FROM folders WHERE id = ").WithArgs("c").WillReturnRows(rows)

	f, err := repo.GetByID(context.Background(), "c")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if f.ParentID == nil || *f.ParentID != "p" {
		t.Fatalf("expected parent p, got %+v", f.ParentID)
	}
}

func TestPGGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT (.+) FROM folders WHERE id = ").
		WithArgs("x").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), "x")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

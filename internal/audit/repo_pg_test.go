package audit

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoRoundTripsMeta(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := &PGRepo{DB: db}
	now := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs("a1", sqlmock.AnyArg(), ActionDocumentCreate, EntityDocument, sqlmock.AnyArg(), []byte(`{"title":"Invoice"}`), now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Insert(context.Background(), Entry{
		ID:         "a1",
		UserID:     "u1",
		Action:     ActionDocumentCreate,
		EntityType: EntityDocument,
		EntityID:   "d1",
		Meta:       map[string]any{"title": "Invoice"},
		CreatedAt:  now,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	rows := sqlmock.NewRows([]string{"id", "user_id", "action", "entity_type", "entity_id", "meta", "created_at"}).
		AddRow("a1", "u1", ActionDocumentCreate, EntityDocument, "d1", []byte(`{"title":"Invoice"}`), now).
		AddRow("a0", nil, ActionFolderDelete, EntityFolder, nil, []byte(`{}`), now.Add(-time.Minute))
	mock.ExpectQuery("SELECT (.+) FROM audit_logs").WithArgs(50).WillReturnRows(rows)

	entries, err := repo.List(context.Background(), 50)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Meta["title"] != "Invoice" {
		t.Fatalf("unexpected meta: %v", entries[0].Meta)
	}
	if entries[1].UserID != "" || entries[1].EntityID != "" {
		t.Fatalf("expected null columns to scan as empty, got %+v", entries[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

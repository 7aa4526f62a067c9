package pgchunk

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/storage/blob"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/util"
)

func newMockStore(t *testing.T, chunkSize int) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	return &Store{DB: sqlDB, ChunkSize: chunkSize, now: func() time.Time { return now }}, mock
}

func TestPutWritesChunksInOneTransaction(t *testing.T) {
	store, mock := newMockStore(t, 4)
	payload := []byte("%PDF-12345")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO blobs").
		WithArgs(sqlmock.AnyArg(), "scan.pdf", "application/pdf", 4, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO blob_chunks").
		WithArgs(sqlmock.AnyArg(), 0, []byte("%PDF")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO blob_chunks").
		WithArgs(sqlmock.AnyArg(), 1, []byte("-123")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO blob_chunks").
		WithArgs(sqlmock.AnyArg(), 2, []byte("45")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE blobs SET size_bytes").
		WithArgs(sqlmock.AnyArg(), int64(len(payload)), util.Checksum(payload)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := store.Put(context.Background(), &byteReader{data: payload}, "application/pdf", "scan.pdf")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if b.SizeBytes != int64(len(payload)) {
		t.Fatalf("unexpected size %d", b.SizeBytes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPutRollsBackOnChunkFailure(t *testing.T) {
	store, mock := newMockStore(t, 4)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO blobs").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO blob_chunks").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	if _, err := store.Put(context.Background(), &byteReader{data: []byte("%PDF-1")}, "application/pdf", "a.pdf"); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestOpenStreamsChunks(t *testing.T) {
	store, mock := newMockStore(t, 4)
	ref := "8f14e45f-ceea-467f-a0e6-b1e3b4f1c2d3"

	mock.ExpectQuery("SELECT true FROM blobs").WithArgs(ref).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT data FROM blob_chunks").WithArgs(ref, 0).
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte("%PDF")))
	mock.ExpectQuery("SELECT data FROM blob_chunks").WithArgs(ref, 1).
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte("-1")))
	mock.ExpectQuery("SELECT data FROM blob_chunks").WithArgs(ref, 2).
		WillReturnError(sql.ErrNoRows)

	rc, err := store.Open(context.Background(), ref)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "%PDF-1" {
		t.Fatalf("unexpected content %q", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestOpenUnknownRef(t *testing.T) {
	store, mock := newMockStore(t, 4)
	ref := "8f14e45f-ceea-467f-a0e6-b1e3b4f1c2d3"
	mock.ExpectQuery("SELECT true FROM blobs").WithArgs(ref).WillReturnError(sql.ErrNoRows)

	if _, err := store.Open(context.Background(), ref); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Open(context.Background(), "not-a-uuid"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed ref, got %v", err)
	}
}

func TestSearchNamesEscapesPattern(t *testing.T) {
	store, mock := newMockStore(t, 4)
	mock.ExpectQuery("SELECT id FROM blobs").WithArgs(`%inv\_%`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a").AddRow("b"))

	refs, err := store.SearchNames(context.Background(), "inv_")
	if err != nil {
		t.Fatalf("SearchNames: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %v", refs)
	}
}

type byteReader struct {
	data []byte
}

func (r *byteReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

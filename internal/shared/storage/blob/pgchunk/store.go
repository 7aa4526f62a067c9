// Package pgchunk stores blobs as fixed-size chunks in Postgres, so payloads
// live alongside the metadata and reads never hold more than one chunk.
package pgchunk

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/storage/blob"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/storage/db"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/util"
)

// DefaultChunkSize matches the GridFS default of 255 KiB.
const DefaultChunkSize = 255 * 1024

// Store implements blob.Store on the blobs/blob_chunks tables.
type Store struct {
	DB        *sql.DB
	ChunkSize int
	now       func() time.Time
}

// New creates a chunked store using the default chunk size.
func New(sqlDB *sql.DB) *Store {
	return &Store{DB: sqlDB, ChunkSize: DefaultChunkSize, now: time.Now}
}

// Put writes the header and every chunk in one transaction.
func (s *Store) Put(ctx context.Context, r io.Reader, contentType, displayName string) (blob.Blob, error) {
	chunkSize := s.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	now := time.Now
	if s.now != nil {
		now = s.now
	}

	b := blob.Blob{
		Ref:         uuid.NewString(),
		DisplayName: blob.StoredName(displayName),
		ContentType: contentType,
		CreatedAt:   now().UTC(),
	}

	const (
		insertHeader = `
INSERT INTO blobs (id, display_name, content_type, size_bytes, checksum, chunk_size, created_at)
VALUES ($1, $2, $3, 0, '', $4, $5)`
		insertChunk  = `INSERT INTO blob_chunks (blob_id, seq, data) VALUES ($1, $2, $3)`
		finishHeader = `UPDATE blobs SET size_bytes = $2, checksum = $3 WHERE id = $1`
	)

	err := db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insertHeader, b.Ref, b.DisplayName, b.ContentType, chunkSize, b.CreatedAt); err != nil {
			return fmt.Errorf("insert blob header: %w", err)
		}

		cr := util.NewChecksumReader(r)
		buf := make([]byte, chunkSize)
		for seq := 0; ; seq++ {
			n, readErr := io.ReadFull(cr, buf)
			if n > 0 {
				if _, err := tx.ExecContext(ctx, insertChunk, b.Ref, seq, buf[:n]); err != nil {
					return fmt.Errorf("insert chunk %d: %w", seq, err)
				}
			}
			if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
				break
			}
			if readErr != nil {
				return fmt.Errorf("read body: %w", readErr)
			}
		}

		b.SizeBytes = cr.Size()
		b.Checksum = cr.Sum()
		if _, err := tx.ExecContext(ctx, finishHeader, b.Ref, b.SizeBytes, b.Checksum); err != nil {
			return fmt.Errorf("finish blob header: %w", err)
		}
		return nil
	})
	if err != nil {
		return blob.Blob{}, err
	}
	return b, nil
}

// Open checks the blob exists and returns a reader that fetches chunks lazily.
func (s *Store) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if _, err := uuid.Parse(ref); err != nil {
		return nil, blob.ErrNotFound
	}
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT true FROM blobs WHERE id = $1`, ref).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, blob.ErrNotFound
		}
		return nil, fmt.Errorf("load blob header: %w", err)
	}
	return &chunkReader{ctx: ctx, db: s.DB, id: ref}, nil
}

// SearchNames matches display names with ILIKE.
func (s *Store) SearchNames(ctx context.Context, substr string) ([]string, error) {
	const query = `
SELECT id FROM blobs
WHERE display_name ILIKE $1 ESCAPE '\'
ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, db.LikePattern(substr))
	if err != nil {
		return nil, fmt.Errorf("search blobs: %w", err)
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		refs = append(refs, id)
	}
	return refs, rows.Err()
}

type chunkReader struct {
	ctx  context.Context
	db   *sql.DB
	id   string
	seq  int
	buf  []byte
	done bool
}

func (r *chunkReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		if r.done {
			return 0, io.EOF
		}
		var data []byte
		err := r.db.QueryRowContext(r.ctx,
			`SELECT data FROM blob_chunks WHERE blob_id = $1 AND seq = $2`, r.id, r.seq).Scan(&data)
		if errors.Is(err, sql.ErrNoRows) {
			r.done = true
			return 0, io.EOF
		}
		if err != nil {
			return 0, fmt.Errorf("read chunk %d: %w", r.seq, err)
		}
		r.seq++
		r.buf = data
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func (r *chunkReader) Close() error {
	r.done = true
	r.buf = nil
	return nil
}

var _ blob.Store = (*Store)(nil)

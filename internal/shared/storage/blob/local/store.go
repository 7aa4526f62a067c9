package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/storage/blob"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/util"
)

const tmpPrefix = ".tmp-"

// Store implements blob.Store on a filesystem.
type Store struct {
	fs  afero.Fs
	now func() time.Time
}

// New creates a blob store rooted at baseDir on the OS filesystem.
func New(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	return NewWithFs(afero.NewBasePathFs(afero.NewOsFs(), baseDir)), nil
}

// NewWithFs creates a blob store on an arbitrary afero filesystem.
func NewWithFs(fsys afero.Fs) *Store {
	return &Store{fs: fsys, now: time.Now}
}

// Put writes r to a temporary file and renames it into place once complete.
func (s *Store) Put(ctx context.Context, r io.Reader, contentType, displayName string) (blob.Blob, error) {
	if err := ctx.Err(); err != nil {
		return blob.Blob{}, err
	}

	name := blob.StoredName(displayName)
	ref, err := blob.NewRef(name)
	if err != nil {
		return blob.Blob{}, fmt.Errorf("generate ref: %w", err)
	}

	tmpPath := "/" + tmpPrefix + ref
	f, err := s.fs.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return blob.Blob{}, fmt.Errorf("open file: %w", err)
	}

	cr := util.NewChecksumReader(r)
	_, copyErr := io.Copy(f, cr)
	closeErr := f.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr == nil {
		copyErr = ctx.Err()
	}
	if copyErr != nil {
		_ = s.fs.Remove(tmpPath)
		return blob.Blob{}, fmt.Errorf("write body: %w", copyErr)
	}

	if err := s.fs.Rename(tmpPath, "/"+ref); err != nil {
		_ = s.fs.Remove(tmpPath)
		return blob.Blob{}, fmt.Errorf("rename: %w", err)
	}

	return blob.Blob{
		Ref:         ref,
		DisplayName: name,
		ContentType: contentType,
		SizeBytes:   cr.Size(),
		Checksum:    cr.Sum(),
		CreatedAt:   s.now().UTC(),
	}, nil
}

// Open opens a stored blob for reading.
func (s *Store) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validRef(ref) {
		return nil, blob.ErrNotFound
	}

	f, err := s.fs.Open("/" + ref)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, blob.ErrNotFound
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return f, nil
}

// SearchNames scans the store directory for matching display names.
func (s *Store) SearchNames(ctx context.Context, substr string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := afero.ReadDir(s.fs, "/")
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var refs []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), tmpPrefix) {
			continue
		}
		if blob.ContainsFold(blob.NameFromRef(e.Name()), substr) {
			refs = append(refs, e.Name())
		}
	}
	sort.Strings(refs)
	return refs, nil
}

func validRef(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, ".") {
		return false
	}
	return !strings.ContainsAny(ref, `/\`)
}

var _ blob.Store = (*Store)(nil)

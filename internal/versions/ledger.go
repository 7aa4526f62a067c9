package versions

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/metrics"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/storage/blob"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/telemetry"
)

const maxAppendRetries = 20

// Ledger numbers and records document versions. Numbers are count+1; the
// repository's uniqueness guard turns concurrent appends into retries.
type Ledger struct {
	Repo       Repo
	Now        func() time.Time
	NewBackOff func() backoff.BackOff
}

// NewLedger constructs a Ledger with the default retry policy.
func NewLedger(repo Repo) *Ledger {
	return &Ledger{Repo: repo, Now: time.Now, NewBackOff: defaultBackOff}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond
	b.MaxElapsedTime = 10 * time.Second
	return backoff.WithMaxRetries(b, maxAppendRetries)
}

// NewVersion builds an unsaved version record for b.
func (l *Ledger) NewVersion(documentID string, number int, b blob.Blob, pageCount int) Version {
	return Version{
		ID:            uuid.NewString(),
		DocumentID:    documentID,
		VersionNumber: number,
		BlobRef:       b.Ref,
		SizeBytes:     b.SizeBytes,
		MimeType:      b.ContentType,
		Checksum:      b.Checksum,
		PageCount:     pageCount,
		CreatedAt:     l.now(),
	}
}

// Append records b as the next version of documentID.
func (l *Ledger) Append(ctx context.Context, documentID string, b blob.Blob, pageCount int) (Version, error) {
	attempt := 0
	op := func() (Version, error) {
		attempt++
		n, err := l.Repo.Count(ctx, documentID)
		if err != nil {
			return Version{}, backoff.Permanent(err)
		}
		v := l.NewVersion(documentID, n+1, b, pageCount)
		if err := l.Repo.Insert(ctx, v); err != nil {
			if errors.Is(err, ErrDuplicateVersion) {
				metrics.IncVersionConflicts()
				return Version{}, err
			}
			return Version{}, backoff.Permanent(err)
		}
		return v, nil
	}

	newBackOff := l.NewBackOff
	if newBackOff == nil {
		newBackOff = defaultBackOff
	}
	v, err := backoff.RetryWithData(op, backoff.WithContext(newBackOff(), ctx))
	if err != nil {
		if errors.Is(err, ErrDuplicateVersion) {
			telemetry.Warn("versions.append.exhausted", map[string]any{
				"document_id": documentID,
				"attempts":    attempt,
			})
			return Version{}, ErrAppendContention
		}
		return Version{}, err
	}
	metrics.IncVersionsAppended()
	return v, nil
}

// List returns a document's versions, newest first.
func (l *Ledger) List(ctx context.Context, documentID string) ([]Version, error) {
	return l.Repo.ListByDocument(ctx, documentID)
}

// Latest returns the highest-numbered version.
func (l *Ledger) Latest(ctx context.Context, documentID string) (Version, error) {
	return l.Repo.Latest(ctx, documentID)
}

// Get returns a version by ID.
func (l *Ledger) Get(ctx context.Context, id string) (Version, error) {
	return l.Repo.GetByID(ctx, id)
}

// DocumentIDsForBlobs maps blob refs back to the documents that use them.
func (l *Ledger) DocumentIDsForBlobs(ctx context.Context, refs []string) ([]string, error) {
	return l.Repo.DocumentIDsForBlobs(ctx, refs)
}

func (l *Ledger) now() time.Time {
	if l.Now == nil {
		return time.Now().UTC()
	}
	return l.Now().UTC()
}

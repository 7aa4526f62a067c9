package documents

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sulaiman-F/wthqh-backend/internal/audit"
	"github.com/Sulaiman-F/wthqh-backend/internal/folders"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/auth"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/metrics"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/pdfinfo"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/storage/blob"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/telemetry"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/util"
	"github.com/Sulaiman-F/wthqh-backend/internal/versions"
)

// FolderLookup resolves the folders documents are placed in.
type FolderLookup interface {
	Get(ctx context.Context, p auth.Principal, id string) (folders.Folder, error)
	ResolveForDocument(ctx context.Context, p auth.Principal, id string) (folders.Folder, error)
}

// Service contains business logic for documents.
type Service struct {
	Repo    Repo
	Ledger  *versions.Ledger
	Blobs   blob.Store
	Folders FolderLookup
	Audit   audit.Recorder
	Now     func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo, ledger *versions.Ledger, blobs blob.Store, fl FolderLookup, rec audit.Recorder) *Service {
	return &Service{Repo: repo, Ledger: ledger, Blobs: blobs, Folders: fl, Audit: rec, Now: time.Now}
}

// Create stores the file and records the document with version 1. Nothing is
// recorded when the blob cannot be stored.
func (s *Service) Create(ctx context.Context, p auth.Principal, in CreateInput) (Document, versions.Version, error) {
	title := util.SanitizeText(in.Title)
	if title == "" {
		return Document{}, versions.Version{}, ErrTitleRequired
	}
	folderID := strings.TrimSpace(in.FolderID)
	if folderID == "" {
		return Document{}, versions.Version{}, ErrFolderRequired
	}
	if err := checkUpload(in.File); err != nil {
		return Document{}, versions.Version{}, err
	}
	if _, err := s.Folders.ResolveForDocument(ctx, p, folderID); err != nil {
		if errors.Is(err, folders.ErrNotFound) {
			return Document{}, versions.Version{}, ErrFolderNotFound
		}
		return Document{}, versions.Version{}, err
	}

	b, pages, err := s.store(ctx, in.File)
	if err != nil {
		return Document{}, versions.Version{}, err
	}

	now := s.now()
	doc := Document{
		ID:          uuid.NewString(),
		Title:       title,
		Description: cleanDescription(in.Description),
		Tags:        tagsOrEmpty(in.Tags),
		OwnerID:     p.UserID,
		FolderID:    folderID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	first := s.Ledger.NewVersion(doc.ID, 1, b, pages)
	if err := s.Repo.CreateWithVersion(ctx, doc, first); err != nil {
		telemetry.Error("documents.create.orphan_blob", map[string]any{
			"blob_ref": b.Ref,
			"error":    err,
		})
		return Document{}, versions.Version{}, err
	}

	metrics.IncDocumentsCreated()
	metrics.IncVersionsAppended()
	s.record(ctx, p, audit.ActionDocumentCreate, doc.ID, map[string]any{"title": doc.Title, "folderId": doc.FolderID})
	return doc, first, nil
}

// Get returns a document the principal may access.
func (s *Service) Get(ctx context.Context, p auth.Principal, id string) (Document, error) {
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Document{}, err
	}
	if !p.CanAccess(doc.OwnerID) {
		return Document{}, ErrForbidden
	}
	return doc, nil
}

// Update applies a partial metadata patch.
func (s *Service) Update(ctx context.Context, p auth.Principal, id string, patch Patch) (Document, error) {
	doc, err := s.Get(ctx, p, id)
	if err != nil {
		return Document{}, err
	}

	changed := make([]string, 0, 3)
	if patch.Title != nil {
		doc.Title = util.SanitizeText(*patch.Title)
		changed = append(changed, "title")
	}
	if doc.Title == "" {
		return Document{}, ErrTitleRequired
	}
	if patch.Description != nil {
		doc.Description = cleanDescription(patch.Description)
		changed = append(changed, "description")
	}
	if patch.Tags != nil {
		doc.Tags = tagsOrEmpty(*patch.Tags)
		changed = append(changed, "tags")
	}
	if len(changed) == 0 {
		return doc, nil
	}

	doc.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, doc); err != nil {
		return Document{}, err
	}
	s.record(ctx, p, audit.ActionDocumentUpdate, doc.ID, map[string]any{"fields": changed})
	return doc, nil
}

// ListByOwner returns the caller's documents, newest-updated first, optionally
// restricted to one folder.
func (s *Service) ListByOwner(ctx context.Context, p auth.Principal, folderID *string) ([]Document, error) {
	if folderID != nil {
		trimmed := strings.TrimSpace(*folderID)
		if trimmed == "" {
			folderID = nil
		} else {
			folderID = &trimmed
		}
	}
	return s.Repo.ListByOwner(ctx, p.UserID, folderID)
}

// ListInFolder returns every document in a folder the caller can see.
func (s *Service) ListInFolder(ctx context.Context, p auth.Principal, folderID string) ([]Document, error) {
	if _, err := s.Folders.Get(ctx, p, folderID); err != nil {
		return nil, err
	}
	return s.Repo.ListInFolder(ctx, folderID)
}

// CountInFolder reports how many documents reference folderID.
func (s *Service) CountInFolder(ctx context.Context, folderID string) (int, error) {
	return s.Repo.CountInFolder(ctx, folderID)
}

// AddVersion stores the file and appends it to the document's ledger.
func (s *Service) AddVersion(ctx context.Context, p auth.Principal, id string, file *Upload) (versions.Version, error) {
	doc, err := s.Get(ctx, p, id)
	if err != nil {
		return versions.Version{}, err
	}
	if err := checkUpload(file); err != nil {
		return versions.Version{}, err
	}

	b, pages, err := s.store(ctx, file)
	if err != nil {
		return versions.Version{}, err
	}
	v, err := s.Ledger.Append(ctx, doc.ID, b, pages)
	if err != nil {
		telemetry.Error("documents.version.orphan_blob", map[string]any{
			"document_id": doc.ID,
			"blob_ref":    b.Ref,
			"error":       err,
		})
		return versions.Version{}, err
	}
	if err := s.Repo.Touch(ctx, doc.ID, v.CreatedAt); err != nil {
		telemetry.Warn("documents.touch_failed", map[string]any{"document_id": doc.ID, "error": err})
	}
	s.record(ctx, p, audit.ActionVersionCreate, doc.ID, map[string]any{
		"versionId":     v.ID,
		"versionNumber": v.VersionNumber,
	})
	return v, nil
}

// Versions lists a document's versions, newest first.
func (s *Service) Versions(ctx context.Context, p auth.Principal, id string) ([]versions.Version, error) {
	doc, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return s.Ledger.List(ctx, doc.ID)
}

// OpenLatest opens the newest version of a document the caller can access.
func (s *Service) OpenLatest(ctx context.Context, p auth.Principal, id string) (Download, error) {
	doc, err := s.Get(ctx, p, id)
	if err != nil {
		return Download{}, err
	}
	return s.openLatest(ctx, doc)
}

// OpenLatestUnchecked opens the newest version without an access check. It is
// meant for capability-based access such as share links.
func (s *Service) OpenLatestUnchecked(ctx context.Context, id string) (Download, error) {
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Download{}, err
	}
	return s.openLatest(ctx, doc)
}

// OpenVersion opens a specific version by ID.
func (s *Service) OpenVersion(ctx context.Context, p auth.Principal, versionID string) (Download, error) {
	v, err := s.Ledger.Get(ctx, versionID)
	if err != nil {
		return Download{}, err
	}
	doc, err := s.Get(ctx, p, v.DocumentID)
	if err != nil {
		return Download{}, err
	}
	return s.open(ctx, doc, v)
}

// SearchMetadata returns documents whose title, description or tags contain
// q. Non-admins only see their own documents.
func (s *Service) SearchMetadata(ctx context.Context, p auth.Principal, q string) ([]Document, error) {
	if p.UserID == "" {
		return []Document{}, nil
	}
	return s.Repo.SearchMetadata(ctx, ownerScope(p), q)
}

// Visible loads the documents among ids that the caller may access, newest
// updated first.
func (s *Service) Visible(ctx context.Context, p auth.Principal, ids []string) ([]Document, error) {
	list, err := s.Repo.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]Document, 0, len(list))
	for _, d := range list {
		if p.CanAccess(d.OwnerID) {
			out = append(out, d)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *Service) openLatest(ctx context.Context, doc Document) (Download, error) {
	v, err := s.Ledger.Latest(ctx, doc.ID)
	if err != nil {
		return Download{}, err
	}
	return s.open(ctx, doc, v)
}

func (s *Service) open(ctx context.Context, doc Document, v versions.Version) (Download, error) {
	body, err := s.Blobs.Open(ctx, v.BlobRef)
	if err != nil {
		return Download{}, err
	}
	return Download{Document: doc, Version: v, Body: body}, nil
}

func (s *Service) store(ctx context.Context, file *Upload) (blob.Blob, int, error) {
	pages := pdfinfo.PageCount(file.Body, file.Size)
	b, err := s.Blobs.Put(ctx, io.NewSectionReader(file.Body, 0, file.Size), pdfinfo.MimePDF, file.FileName)
	if err != nil {
		return blob.Blob{}, 0, err
	}
	metrics.ObserveUploadBytes(b.SizeBytes)
	return b, pages, nil
}

func (s *Service) record(ctx context.Context, p auth.Principal, action, id string, meta map[string]any) {
	if s.Audit == nil {
		return
	}
	s.Audit.Record(ctx, p.UserID, action, audit.EntityDocument, id, meta)
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func checkUpload(file *Upload) error {
	if file == nil || file.Body == nil || file.Size <= 0 {
		return ErrFileRequired
	}
	if !pdfinfo.Accept(file.Body, file.ContentType) {
		return ErrNotPDF
	}
	return nil
}

func cleanDescription(desc *string) *string {
	if desc == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*desc)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func ownerScope(p auth.Principal) string {
	if p.IsAdmin() {
		return ""
	}
	return p.UserID
}

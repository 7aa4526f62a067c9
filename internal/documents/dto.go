package documents

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Sulaiman-F/wthqh-backend/internal/versions"
)

// OptionalText distinguishes an absent JSON field from an explicit null.
type OptionalText struct {
	Set   bool
	Value *string
}

func (o *OptionalText) UnmarshalJSON(b []byte) error {
	o.Set = true
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := unmarshalString(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

type patchRequest struct {
	Title       *string      `json:"title"`
	Description OptionalText `json:"description"`
	Tags        *TagsInput   `json:"tags"`
}

func (r patchRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 500)),
	)
}

func (r patchRequest) toPatch() Patch {
	var patch Patch
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		patch.Title = &title
	}
	if r.Description.Set {
		empty := ""
		patch.Description = &empty
		if r.Description.Value != nil {
			patch.Description = r.Description.Value
		}
	}
	if r.Tags != nil {
		tags := []string(*r.Tags)
		patch.Tags = &tags
	}
	return patch
}

type createForm struct {
	Title    string
	FolderID string
}

func (f createForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Title, validation.Required.Error("title is required"), validation.Length(1, 500)),
		validation.Field(&f.FolderID, validation.Required.Error("folderId is required")),
	)
}

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Tags        []string  `json:"tags"`
	OwnerID     string    `json:"ownerId"`
	FolderID    string    `json:"folderId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// VersionResponse is the outward-facing representation of a version.
type VersionResponse struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"documentId"`
	VersionNumber int       `json:"versionNumber"`
	SizeBytes     int64     `json:"sizeBytes"`
	MimeType      string    `json:"mimeType"`
	Checksum      string    `json:"checksum,omitempty"`
	PageCount     int       `json:"pageCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ToResponse converts a document for JSON output.
func ToResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		ID:          doc.ID,
		Title:       doc.Title,
		Description: doc.Description,
		Tags:        tagsOrEmpty(doc.Tags),
		OwnerID:     doc.OwnerID,
		FolderID:    doc.FolderID,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

// ToResponses converts a list of documents for JSON output.
func ToResponses(list []Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(list))
	for _, d := range list {
		out = append(out, ToResponse(d))
	}
	return out
}

func toVersionResponse(v versions.Version) VersionResponse {
	return VersionResponse{
		ID:            v.ID,
		DocumentID:    v.DocumentID,
		VersionNumber: v.VersionNumber,
		SizeBytes:     v.SizeBytes,
		MimeType:      v.MimeType,
		Checksum:      v.Checksum,
		PageCount:     v.PageCount,
		CreatedAt:     v.CreatedAt,
	}
}

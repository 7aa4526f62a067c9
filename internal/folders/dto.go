package folders

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type createRequest struct {
	Name           string  `json:"name"`
	ParentFolderID *string `json:"parentFolderId"`
}

func (r createRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
	)
}

type renameRequest struct {
	Name string `json:"name"`
}

func (r renameRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
	)
}

// FolderResponse is the outward-facing representation of a folder.
type FolderResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	OwnerID        string    `json:"ownerId"`
	ParentFolderID *string   `json:"parentFolderId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NodeResponse is a folder with nested children.
type NodeResponse struct {
	FolderResponse
	Children []NodeResponse `json:"children"`
}

func toResponse(f Folder) FolderResponse {
	return FolderResponse{
		ID:             f.ID,
		Name:           f.Name,
		OwnerID:        f.OwnerID,
		ParentFolderID: f.ParentID,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

func toNodeResponses(nodes []*Node) []NodeResponse {
	out := make([]NodeResponse, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, NodeResponse{
			FolderResponse: toResponse(n.Folder),
			Children:       toNodeResponses(n.Children),
		})
	}
	return out
}

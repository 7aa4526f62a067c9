package audit

import "time"

// Actions recorded by the services.
const (
	ActionFolderCreate   = "folder.create"
	ActionFolderRename   = "folder.rename"
	ActionFolderDelete   = "folder.delete"
	ActionDocumentCreate = "document.create"
	ActionDocumentUpdate = "document.update"
	ActionVersionCreate  = "version.create"
	ActionShareCreate    = "share.create"
)

// Entity types referenced by entries.
const (
	EntityFolder   = "folder"
	EntityDocument = "document"
	EntityShare    = "share"
)

// Entry is one append-only audit record.
type Entry struct {
	ID         string
	UserID     string
	Action     string
	EntityType string
	EntityID   string
	Meta       map[string]any
	CreatedAt  time.Time
}

package versions

import "time"

// Version is one immutable upload of a document's binary content.
type Version struct {
	ID            string
	DocumentID    string
	VersionNumber int
	BlobRef       string
	SizeBytes     int64
	MimeType      string
	Checksum      string
	PageCount     int
	CreatedAt     time.Time
}

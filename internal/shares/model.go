package shares

import "time"

// Share is a capability granting read access to the latest version of a
// document. A nil ExpiresAt never expires.
type Share struct {
	ID         string
	DocumentID string
	Token      string
	ExpiresAt  *time.Time
	CreatedBy  string
	CreatedAt  time.Time
}

// Expired reports whether the share is no longer valid at now.
func (s Share) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

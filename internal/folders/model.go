package folders

import "time"

// Folder is a named container in a user's hierarchy. A nil ParentID marks a
// root folder.
type Folder struct {
	ID        string
	Name      string
	OwnerID   string
	ParentID  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Node is a folder with its children, used for the tree view.
type Node struct {
	Folder
	Children []*Node
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

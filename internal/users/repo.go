package users

import "context"

// Repo persists accounts. Emails are stored lowercased and must be unique.
type Repo interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
}

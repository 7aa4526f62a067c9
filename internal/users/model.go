package users

import "time"

// User is an account that can own folders and documents.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SignupInput carries the fields for a new account.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Session is the result of a successful signup or signin.
type Session struct {
	User         User
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

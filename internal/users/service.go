package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/auth"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/util"
)

// TokenIssuer signs and verifies the tokens handed to clients.
type TokenIssuer interface {
	IssueAccess(p auth.Principal) (string, error)
	IssueRefresh(p auth.Principal) (string, error)
	VerifyRefresh(token string) (auth.Claims, error)
	AccessTTL() time.Duration
}

// Service handles account creation and authentication.
type Service struct {
	Repo             Repo
	Tokens           TokenIssuer
	AllowAdminSignup bool
	Cost             int
	Now              func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo, tokens TokenIssuer) *Service {
	return &Service{Repo: repo, Tokens: tokens, Cost: bcrypt.DefaultCost, Now: time.Now}
}

// Signup creates an account and signs it in. The admin role is only granted
// when AllowAdminSignup is set.
func (s *Service) Signup(ctx context.Context, in SignupInput) (Session, error) {
	email := NormalizeEmail(in.Email)
	name := util.SanitizeText(in.Name)

	role := auth.RoleMember
	if s.AllowAdminSignup {
		role = auth.NormalizeRole(strings.ToLower(strings.TrimSpace(in.Role)))
	}

	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return Session{}, ErrPasswordTooLong
	}
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return Session{}, err
	}
	return s.session(u)
}

// Signin checks credentials and issues tokens.
func (s *Service) Signin(ctx context.Context, email, password string) (Session, error) {
	u, err := s.Repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.session(u)
}

// Refresh exchanges a refresh token for a new access token. The role is
// re-read from storage so demotions take effect.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.Tokens.VerifyRefresh(strings.TrimSpace(refreshToken))
	if err != nil {
		return "", ErrInvalidRefresh
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidRefresh
		}
		return "", err
	}
	return s.Tokens.IssueAccess(principalOf(u))
}

// Me returns the stored profile for the caller.
func (s *Service) Me(ctx context.Context, p auth.Principal) (User, error) {
	return s.Repo.GetByID(ctx, p.UserID)
}

func (s *Service) session(u User) (Session, error) {
	p := principalOf(u)
	access, err := s.Tokens.IssueAccess(p)
	if err != nil {
		return Session{}, err
	}
	refresh, err := s.Tokens.IssueRefresh(p)
	if err != nil {
		return Session{}, err
	}
	return Session{
		User:         u,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.Tokens.AccessTTL() / time.Second),
	}, nil
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func principalOf(u User) auth.Principal {
	return auth.Principal{UserID: u.ID, Role: auth.NormalizeRole(u.Role)}
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	errMissingSecret = errors.New("jwt secret not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

// Claims represents the identity contained in a JWT.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// Principal returns the caller identity carried by the claims.
func (c Claims) Principal() Principal {
	return Principal{UserID: c.UserID, Role: NormalizeRole(c.Role)}
}

// IssuerConfig configures token signing.
type IssuerConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Production    bool
}

// Issuer signs and verifies access and refresh tokens with HS256.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewIssuer validates the configuration. Outside production a missing secret
// falls back to a development value.
func NewIssuer(cfg IssuerConfig) (*Issuer, error) {
	access, err := secretOrDefault(cfg.AccessSecret, cfg.Production)
	if err != nil {
		return nil, fmt.Errorf("access: %w", err)
	}
	refresh, err := secretOrDefault(cfg.RefreshSecret, cfg.Production)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}
	return &Issuer{
		accessSecret:  access,
		refreshSecret: refresh,
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}, nil
}

// AccessTTL returns the lifetime of access tokens.
func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

// IssueAccess signs a short-lived access token for p.
func (i *Issuer) IssueAccess(p Principal) (string, error) {
	return i.sign(p, TokenTypeAccess, i.accessSecret, i.accessTTL)
}

// IssueRefresh signs a long-lived refresh token for p.
func (i *Issuer) IssueRefresh(p Principal) (string, error) {
	return i.sign(p, TokenTypeRefresh, i.refreshSecret, i.refreshTTL)
}

// VerifyAccess parses an access token and returns its claims.
func (i *Issuer) VerifyAccess(token string) (Claims, error) {
	return i.verify(token, TokenTypeAccess, i.accessSecret)
}

// VerifyRefresh parses a refresh token and returns its claims.
func (i *Issuer) VerifyRefresh(token string) (Claims, error) {
	return i.verify(token, TokenTypeRefresh, i.refreshSecret)
}

func (i *Issuer) sign(p Principal, typ string, secret []byte, ttl time.Duration) (string, error) {
	if p.UserID == "" {
		return "", errors.New("userId is required")
	}
	now := i.now().UTC()
	claims := Claims{
		UserID: p.UserID,
		Role:   NormalizeRole(p.Role),
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (i *Issuer) verify(raw, typ string, secret []byte) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == "" || claims.Type != typ {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

func secretOrDefault(secret string, production bool) ([]byte, error) {
	if secret != "" {
		return []byte(secret), nil
	}
	if production {
		return nil, fmt.Errorf("%w: JWT_SECRET required in production", errMissingSecret)
	}
	return []byte("dev-secret"), nil
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/auth"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/server/respond"
)

const (
	userIDKey   = "userId"
	userRoleKey = "userRole"
)

// TokenVerifier validates bearer access tokens.
type TokenVerifier interface {
	VerifyAccess(token string) (auth.Claims, error)
}

// Auth validates bearer access tokens and stores the principal in context.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(authHeader, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "Missing or invalid token")
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if token == "" {
			respond.Error(c, http.StatusUnauthorized, "Missing or invalid token")
			return
		}

		claims, err := verifier.VerifyAccess(token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		SetPrincipal(c, claims.Principal())
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userIDKey)
}

// PrincipalFromContext returns the caller identity set by the auth middleware.
func PrincipalFromContext(c *gin.Context) auth.Principal {
	if c == nil {
		return auth.Principal{}
	}
	return auth.Principal{
		UserID: c.GetString(userIDKey),
		Role:   c.GetString(userRoleKey),
	}
}

// SetPrincipal stores the caller identity on the request context.
func SetPrincipal(c *gin.Context, p auth.Principal) {
	c.Set(userIDKey, p.UserID)
	c.Set(userRoleKey, p.Role)
}

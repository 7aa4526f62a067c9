package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Sulaiman-F/wthqh-backend/internal/audit"
	"github.com/Sulaiman-F/wthqh-backend/internal/documents"
	"github.com/Sulaiman-F/wthqh-backend/internal/folders"
	"github.com/Sulaiman-F/wthqh-backend/internal/search"
	"github.com/Sulaiman-F/wthqh-backend/internal/services/health"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/config"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/metrics"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/server/middleware"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/server/respond"
	"github.com/Sulaiman-F/wthqh-backend/internal/shares"
	"github.com/Sulaiman-F/wthqh-backend/internal/users"
)

// Rate limit groups.
const (
	GroupDefault = "DEFAULT"
	GroupAuth    = "AUTH"
	GroupPublic  = "PUBLIC"
)

// RouterDeps lists the handlers mounted by NewRouter. A nil handler skips its
// routes.
type RouterDeps struct {
	Config          config.Config
	Verifier        middleware.TokenVerifier
	Limiter         *middleware.RateLimiter
	Health          *health.Service
	UserHandler     *users.Handler
	FolderHandler   *folders.Handler
	DocumentHandler *documents.Handler
	ShareHandler    *shares.Handler
	SearchHandler   *search.Handler
	AuditHandler    *audit.Handler
}

// DefaultRateLimitRules returns the per-group token bucket settings.
func DefaultRateLimitRules() map[string]middleware.RateLimitRule {
	return map[string]middleware.RateLimitRule{
		GroupDefault: {Rate: 10, Burst: 40},
		GroupAuth:    {Rate: 1, Burst: 10},
		GroupPublic:  {Rate: 5, Burst: 20},
	}
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.SecurityHeaders(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	live := func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	}
	r.GET("/health", live)
	r.GET("/metrics", metrics.Handler())

	limit := middleware.RateLimit(middleware.RateLimitConfig{
		Rules:        DefaultRateLimitRules(),
		DefaultGroup: GroupDefault,
		GroupFor:     rateLimitGroup,
		Limiter:      deps.Limiter,
	})

	api := r.Group("/api/v1")
	api.GET("/health", live)
	api.GET("/health/ready", func(c *gin.Context) {
		report := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})

	public := api.Group("", limit)
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(public)
	}
	if deps.ShareHandler != nil {
		deps.ShareHandler.RegisterPublicRoutes(public)
	}

	if deps.Verifier == nil {
		return r
	}
	protected := api.Group("", middleware.Auth(deps.Verifier), limit)
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterProtectedRoutes(protected)
	}
	if deps.FolderHandler != nil {
		deps.FolderHandler.RegisterRoutes(protected)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(protected)
	}
	if deps.ShareHandler != nil {
		deps.ShareHandler.RegisterRoutes(protected)
	}
	if deps.SearchHandler != nil {
		deps.SearchHandler.RegisterRoutes(protected)
	}
	if deps.AuditHandler != nil {
		deps.AuditHandler.RegisterRoutes(protected)
	}

	return r
}

func rateLimitGroup(c *gin.Context) string {
	path := c.FullPath()
	switch {
	case strings.HasPrefix(path, "/api/v1/auth/") && c.Request.Method == http.MethodPost:
		return GroupAuth
	case strings.HasPrefix(path, "/api/v1/public/"):
		return GroupPublic
	default:
		return GroupDefault
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}

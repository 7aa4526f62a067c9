package shares

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sulaiman-F/wthqh-backend/internal/documents"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/server/middleware"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/server/respond"
)

const publicPath = "/api/v1/public/"

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc           *Service
	PublicBaseURL string
}

// NewHandler constructs a Handler. publicBaseURL may be empty, in which case
// share URLs are derived from the incoming request.
func NewHandler(svc *Service, publicBaseURL string) *Handler {
	return &Handler{Svc: svc, PublicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

// RegisterRoutes attaches authenticated share routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/share", h.create)
}

// RegisterPublicRoutes attaches the unauthenticated download route.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/public/:token", h.download)
}

type createRequest struct {
	ExpiresInHours *float64 `json:"expiresInHours"`
}

func (h *Handler) create(c *gin.Context) {
	c.Set("documentId", c.Param("id"))
	var req createRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.FromError(c, ErrInvalidExpiry)
			return
		}
	}

	share, err := h.Svc.Create(c.Request.Context(), middleware.PrincipalFromContext(c), c.Param("id"), req.ExpiresInHours)
	if err != nil {
		respond.FromError(c, err)
		return
	}

	body := gin.H{
		"token":     share.Token,
		"url":       h.shareURL(c, share.Token),
		"expiresAt": nil,
	}
	if share.ExpiresAt != nil {
		body["expiresAt"] = share.ExpiresAt.Format(time.RFC3339)
	}
	respond.Success(c, http.StatusCreated, body)
}

func (h *Handler) download(c *gin.Context) {
	d, err := h.Svc.Open(c.Request.Context(), c.Param("token"))
	if err != nil {
		respond.FromError(c, err)
		return
	}
	c.Set("documentId", d.Document.ID)
	documents.WriteDownload(c, d, true)
}

func (h *Handler) shareURL(c *gin.Context, token string) string {
	if h.PublicBaseURL != "" {
		return h.PublicBaseURL + publicPath + token
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if fwd := strings.TrimSpace(strings.Split(c.GetHeader("X-Forwarded-Proto"), ",")[0]); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + c.Request.Host + publicPath + token
}

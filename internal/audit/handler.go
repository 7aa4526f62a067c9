package audit

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/server/middleware"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches audit routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/audit", h.list)
}

type entryResponse struct {
	ID         string         `json:"id"`
	UserID     string         `json:"userId,omitempty"`
	Action     string         `json:"action"`
	EntityType string         `json:"entityType"`
	EntityID   string         `json:"entityId,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func (h *Handler) list(c *gin.Context) {
	p := middleware.PrincipalFromContext(c)
	entries, err := h.Svc.List(c.Request.Context(), p, ParseLimit(c.Query("limit")))
	if err != nil {
		respond.FromError(c, err)
		return
	}

	logs := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		logs = append(logs, entryResponse{
			ID:         e.ID,
			UserID:     e.UserID,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Meta:       e.Meta,
			CreatedAt:  e.CreatedAt,
		})
	}
	respond.Success(c, http.StatusOK, gin.H{"count": len(logs), "logs": logs})
}

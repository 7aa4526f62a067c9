package search

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sulaiman-F/wthqh-backend/internal/documents"
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

// RegisterRoutes attaches search routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search", h.search)
}

func (h *Handler) search(c *gin.Context) {
	results, err := h.Svc.Search(c.Request.Context(), middleware.PrincipalFromContext(c), c.Query("q"))
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{
		"count":     len(results),
		"documents": documents.ToResponses(results),
	})
}

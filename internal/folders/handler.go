package folders

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/apperr"
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

// RegisterRoutes attaches folder routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/folders", h.create)
	rg.GET("/folders", h.list)
	rg.GET("/folders/:id", h.get)
	rg.PATCH("/folders/:id", h.rename)
	rg.DELETE("/folders/:id", h.delete)
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := req.Validate(); err != nil {
		respond.FromError(c, apperr.Validation(err.Error()))
		return
	}

	f, err := h.Svc.Create(c.Request.Context(), middleware.PrincipalFromContext(c), req.Name, req.ParentFolderID)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	c.Set("folderId", f.ID)
	respond.Success(c, http.StatusCreated, gin.H{"folder": toResponse(f)})
}

func (h *Handler) list(c *gin.Context) {
	p := middleware.PrincipalFromContext(c)

	if isTrue(c.Query("tree")) {
		nodes, err := h.Svc.Tree(c.Request.Context(), p)
		if err != nil {
			respond.FromError(c, err)
			return
		}
		respond.Success(c, http.StatusOK, gin.H{"tree": toNodeResponses(nodes)})
		return
	}

	var parentID *string
	if raw, ok := c.GetQuery("parent"); ok {
		parentID = &raw
	}
	list, err := h.Svc.ListChildren(c.Request.Context(), p, parentID)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	folders := make([]FolderResponse, 0, len(list))
	for _, f := range list {
		folders = append(folders, toResponse(f))
	}
	respond.Success(c, http.StatusOK, gin.H{"folders": folders})
}

func (h *Handler) get(c *gin.Context) {
	c.Set("folderId", c.Param("id"))
	f, err := h.Svc.Get(c.Request.Context(), middleware.PrincipalFromContext(c), c.Param("id"))
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"folder": toResponse(f)})
}

func (h *Handler) rename(c *gin.Context) {
	c.Set("folderId", c.Param("id"))
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := req.Validate(); err != nil {
		respond.FromError(c, apperr.Validation(err.Error()))
		return
	}

	f, err := h.Svc.Rename(c.Request.Context(), middleware.PrincipalFromContext(c), c.Param("id"), req.Name)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"folder": toResponse(f)})
}

func (h *Handler) delete(c *gin.Context) {
	c.Set("folderId", c.Param("id"))
	if err := h.Svc.Delete(c.Request.Context(), middleware.PrincipalFromContext(c), c.Param("id")); err != nil {
		respond.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func isTrue(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

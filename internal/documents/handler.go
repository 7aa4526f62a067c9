package documents

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/apperr"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/metrics"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/server/middleware"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/server/respond"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/telemetry"
)

// DefaultMaxUploadBytes caps request bodies for uploads when no limit is configured.
const DefaultMaxUploadBytes int64 = 25 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc, MaxUploadBytes: DefaultMaxUploadBytes}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.create)
	rg.GET("/documents/my", h.listMine)
	rg.GET("/documents/versions/:versionId/download", h.downloadVersion)
	rg.GET("/documents/:id", h.get)
	rg.PATCH("/documents/:id", h.update)
	rg.POST("/documents/:id/versions", h.addVersion)
	rg.GET("/documents/:id/versions", h.listVersions)
	rg.GET("/documents/:id/download", h.downloadLatest)
	rg.GET("/folders/:id/documents", h.listInFolder)
}

func (h *Handler) create(c *gin.Context) {
	file, closeFile, err := h.readUpload(c)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	defer closeFile()

	form := createForm{Title: c.PostForm("title"), FolderID: c.PostForm("folderId")}
	if err := form.Validate(); err != nil {
		respond.FromError(c, apperr.Validation(err.Error()))
		return
	}

	in := CreateInput{
		Title:    form.Title,
		FolderID: form.FolderID,
		Tags:     ParseTags(c.PostFormArray("tags")...),
		File:     file,
	}
	if desc, ok := c.GetPostForm("description"); ok {
		in.Description = &desc
	}

	doc, v, err := h.Svc.Create(c.Request.Context(), middleware.PrincipalFromContext(c), in)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	c.Set("documentId", doc.ID)
	respond.Success(c, http.StatusCreated, gin.H{
		"document": ToResponse(doc),
		"version":  toVersionResponse(v),
	})
}

func (h *Handler) listMine(c *gin.Context) {
	var folderID *string
	if raw, ok := c.GetQuery("folderId"); ok {
		folderID = &raw
	}
	list, err := h.Svc.ListByOwner(c.Request.Context(), middleware.PrincipalFromContext(c), folderID)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"documents": ToResponses(list)})
}

func (h *Handler) listInFolder(c *gin.Context) {
	c.Set("folderId", c.Param("id"))
	list, err := h.Svc.ListInFolder(c.Request.Context(), middleware.PrincipalFromContext(c), c.Param("id"))
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"documents": ToResponses(list)})
}

func (h *Handler) get(c *gin.Context) {
	c.Set("documentId", c.Param("id"))
	doc, err := h.Svc.Get(c.Request.Context(), middleware.PrincipalFromContext(c), c.Param("id"))
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"document": ToResponse(doc)})
}

func (h *Handler) update(c *gin.Context) {
	c.Set("documentId", c.Param("id"))
	var req patchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.FromError(c, apperr.Validation("invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		respond.FromError(c, apperr.Validation(err.Error()))
		return
	}

	doc, err := h.Svc.Update(c.Request.Context(), middleware.PrincipalFromContext(c), c.Param("id"), req.toPatch())
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"document": ToResponse(doc)})
}

func (h *Handler) addVersion(c *gin.Context) {
	c.Set("documentId", c.Param("id"))
	file, closeFile, err := h.readUpload(c)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	defer closeFile()

	v, err := h.Svc.AddVersion(c.Request.Context(), middleware.PrincipalFromContext(c), c.Param("id"), file)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, http.StatusCreated, gin.H{"version": toVersionResponse(v)})
}

func (h *Handler) listVersions(c *gin.Context) {
	c.Set("documentId", c.Param("id"))
	list, err := h.Svc.Versions(c.Request.Context(), middleware.PrincipalFromContext(c), c.Param("id"))
	if err != nil {
		respond.FromError(c, err)
		return
	}
	out := make([]VersionResponse, 0, len(list))
	for _, v := range list {
		out = append(out, toVersionResponse(v))
	}
	respond.Success(c, http.StatusOK, gin.H{"versions": out})
}

func (h *Handler) downloadLatest(c *gin.Context) {
	c.Set("documentId", c.Param("id"))
	d, err := h.Svc.OpenLatest(c.Request.Context(), middleware.PrincipalFromContext(c), c.Param("id"))
	if err != nil {
		respond.FromError(c, err)
		return
	}
	WriteDownload(c, d, false)
}

func (h *Handler) downloadVersion(c *gin.Context) {
	d, err := h.Svc.OpenVersion(c.Request.Context(), middleware.PrincipalFromContext(c), c.Param("versionId"))
	if err != nil {
		respond.FromError(c, err)
		return
	}
	c.Set("documentId", d.Document.ID)
	WriteDownload(c, d, false)
}

// WriteDownload streams d to the client and closes its body. Inline
// downloads are rendered by the browser instead of saved.
func WriteDownload(c *gin.Context, d Download, inline bool) {
	defer d.Body.Close()

	disposition := "attachment"
	if inline {
		disposition = "inline"
	}
	filename := fmt.Sprintf("doc-%s-v%d.pdf", d.Document.ID, d.Version.VersionNumber)

	c.Header("Content-Type", d.Version.MimeType)
	c.Header("Content-Disposition", fmt.Sprintf(`%s; filename="%s"`, disposition, filename))
	if d.Version.SizeBytes > 0 {
		c.Header("Content-Length", strconv.FormatInt(d.Version.SizeBytes, 10))
	}
	c.Status(http.StatusOK)
	metrics.IncDownloads()

	if _, err := io.Copy(c.Writer, d.Body); err != nil {
		telemetry.Info("documents.download.aborted", map[string]any{
			"document_id": d.Document.ID,
			"version":     d.Version.VersionNumber,
			"error":       err,
		})
	}
}

// readUpload extracts the "file" part of a multipart request.
func (h *Handler) readUpload(c *gin.Context) (*Upload, func(), error) {
	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, apperr.Validation(fmt.Sprintf("file exceeds the %d byte limit", limit))
		}
		return nil, nil, ErrFileRequired
	}
	f, err := header.Open()
	if err != nil {
		return nil, nil, apperr.Validation("unable to read file")
	}
	return uploadFrom(header, f), func() { _ = f.Close() }, nil
}

func uploadFrom(header *multipart.FileHeader, f multipart.File) *Upload {
	return &Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        f,
		Size:        header.Size,
	}
}

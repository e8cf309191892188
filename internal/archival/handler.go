package archival

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"archive-backend/internal/shared/server/middleware"
	"archive-backend/internal/shared/server/respond"
	"archive-backend/internal/shared/storage/object"
)

// Handler wires the pipeline routes onto the router. They live under the
// /documents prefix next to the archive routes but depend only on the
// pipeline service.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the pipeline routes on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	grp := rg.Group("/documents")
	grp.POST("/analyze/:fileId", h.analyze)
	grp.GET("/analyze/:fileId", h.status)
	grp.DELETE("/analyze/:fileId", h.abandon)
	grp.POST("/process/:fileId", h.process)
}

// processRequest is the optional JSON body of a commit. Empty fields keep
// the analyzed values.
type processRequest struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	DocumentType string `json:"documentType"`
	ImageURL     string `json:"imageUrl"`
}

func (h *Handler) analyze(c *gin.Context) {
	status, err := h.service.Analyze(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("fileId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, status)
}

func (h *Handler) status(c *gin.Context) {
	respond.OK(c, h.service.Status(middleware.UserIDFromContext(c), c.Param("fileId")))
}

func (h *Handler) abandon(c *gin.Context) {
	h.service.Abandon(middleware.UserIDFromContext(c), c.Param("fileId"))
	respond.OK(c, gin.H{"abandoned": true})
}

func (h *Handler) process(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	status, err := h.service.Commit(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("fileId"), CommitOverrides{
		Title:        req.Title,
		Content:      req.Content,
		DocumentType: req.DocumentType,
		ImageURL:     req.ImageURL,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, status)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, object.ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "file not found", nil)
	case errors.Is(err, ErrBusy):
		respond.Error(c, http.StatusConflict, respond.CodeConflict, "pipeline is busy", nil)
	case errors.Is(err, ErrNotAnalyzed):
		respond.Error(c, http.StatusConflict, respond.CodeConflict, "analyze the file before processing it", nil)
	case errors.Is(err, ErrAnalysis):
		respond.Error(c, http.StatusBadGateway, respond.CodeAnalysis, "analysis failed", nil)
	case errors.Is(err, ErrPersist):
		respond.Error(c, http.StatusInternalServerError, respond.CodePersist, "saving the document failed", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "pipeline operation failed", nil)
	}
}

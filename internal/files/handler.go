package files

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"archive-backend/internal/shared/server/respond"
	"archive-backend/internal/shared/storage/object"
)

// Handler exposes the read-only file gateway over HTTP.
type Handler struct {
	store object.Store
}

// NewHandler constructs a Handler.
func NewHandler(store object.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the storage routes on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	grp := rg.Group("/storage")
	grp.GET("/files", h.list)
	grp.GET("/files/:id", h.stat)
	grp.GET("/files/:id/content", h.content)
	grp.GET("/search", h.search)
	grp.GET("/info", h.info)
	grp.GET("/health", h.health)
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.store.List(
		c.Request.Context(),
		c.Query("folder"),
		intQuery(c, "page", 1),
		intQuery(c, "limit", 20),
	)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, list)
}

func (h *Handler) stat(c *gin.Context) {
	info, err := h.store.Stat(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, info)
}

func (h *Handler) content(c *gin.Context) {
	info, err := h.store.Stat(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	body, err := h.store.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer body.Close()

	contentType := info.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	if info.Size > 0 {
		c.Header("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	c.Status(http.StatusOK)
	io.Copy(c.Writer, body)
}

func (h *Handler) search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "search query is required", nil)
		return
	}
	list, err := h.store.Search(
		c.Request.Context(),
		q,
		c.Query("folder"),
		intQuery(c, "page", 1),
		intQuery(c, "limit", 20),
	)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, list)
}

func (h *Handler) info(c *gin.Context) {
	respond.OK(c, h.store.Info(c.Request.Context()))
}

func (h *Handler) health(c *gin.Context) {
	if err := h.store.Healthy(c.Request.Context()); err != nil {
		respond.Error(c, http.StatusBadGateway, respond.CodeNetwork, "storage unreachable", gin.H{
			"error": err.Error(),
		})
		return
	}
	respond.OK(c, gin.H{"healthy": true})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	if errors.Is(err, object.ErrNotFound) {
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "file not found", nil)
		return
	}
	respond.Error(c, http.StatusBadGateway, respond.CodeNetwork, "storage request failed", nil)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

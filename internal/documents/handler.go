package documents

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"archive-backend/internal/query"
	"archive-backend/internal/shared/server/middleware"
	"archive-backend/internal/shared/server/respond"
)

// Handler wires document routes onto the router. The archival pipeline
// routes under the same prefix are mounted by the archival package.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the document routes on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	grp := rg.Group("/documents")
	grp.GET("", h.list)
	grp.GET("/search", h.search)
	grp.GET("/stats", h.stats)
	grp.GET("/entity/:entityId", h.listByEntity)
	grp.GET("/:id", h.get)
	grp.PUT("/:id", h.update)
	grp.DELETE("/:id", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	req := query.Request{
		Query: c.Query("q"),
		Filters: query.Filters{
			DocumentType: firstQuery(c, "documentType", "type"),
			EntityName:   c.Query("entity"),
			Keyword:      c.Query("keyword"),
			SortBy:       c.Query("sortBy"),
			StartDate:    c.Query("startDate"),
			EndDate:      c.Query("endDate"),
		},
		Page:  intQuery(c, "page", 0),
		Limit: intQuery(c, "limit", 0),
	}
	page, err := h.service.Query(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, page)
}

func (h *Handler) search(c *gin.Context) {
	req := query.Request{
		Query: c.Query("q"),
		Page:  intQuery(c, "page", 0),
		Limit: intQuery(c, "limit", 0),
	}
	if req.Mode() != query.ModeSearching {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "search query must be at least 2 characters", nil)
		return
	}
	page, err := h.service.Query(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, page)
}

func (h *Handler) stats(c *gin.Context) {
	respond.OK(c, h.service.Stats(c.Request.Context()))
}

func (h *Handler) listByEntity(c *gin.Context) {
	page, err := h.service.ListByEntity(
		c.Request.Context(),
		c.Param("entityId"),
		intQuery(c, "page", 0),
		intQuery(c, "limit", 0),
	)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, page)
}

func (h *Handler) get(c *gin.Context) {
	doc, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, doc)
}

func (h *Handler) update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	doc, err := h.service.Update(c.Request.Context(), c.Param("id"), req.Params())
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, doc)
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"deleted": true})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "document not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid document input", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodePersist, "document operation failed", nil)
	}
}

func firstQuery(c *gin.Context, keys ...string) string {
	for _, key := range keys {
		if v := c.Query(key); v != "" {
			return v
		}
	}
	return ""
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

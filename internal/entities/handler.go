package entities

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"archive-backend/internal/shared/server/respond"
)

// Handler wires entity catalogue routes onto the router.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the entity routes on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	grp := rg.Group("/entities")
	grp.GET("", h.list)
	grp.GET("/search", h.search)
	grp.GET("/stats", h.stats)
	grp.GET("/:id", h.get)
	grp.PUT("/:id", h.update)
	grp.DELETE("/:id", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 10)
	entityType := c.Query("type")

	result, err := h.service.List(c.Request.Context(), entityType, page, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, result)
}

func (h *Handler) search(c *gin.Context) {
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 10)

	result, err := h.service.Search(c.Request.Context(), c.Query("q"), page, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, result)
}

func (h *Handler) stats(c *gin.Context) {
	respond.OK(c, h.service.Stats(c.Request.Context()))
}

func (h *Handler) get(c *gin.Context) {
	entity, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, entity)
}

type updateRequest struct {
	Name *string `json:"name"`
	Type *string `json:"type"`
	Date *string `json:"date"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	entity, err := h.service.Update(c.Request.Context(), c.Param("id"), UpdateParams{
		Name: req.Name,
		Type: req.Type,
		Date: req.Date,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, entity)
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
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "entity not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid entity input", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "entity operation failed", nil)
	}
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

package auth

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	sharedauth "archive-backend/internal/shared/auth"
	"archive-backend/internal/shared/server/middleware"
	"archive-backend/internal/shared/server/respond"
	"archive-backend/internal/users"
)

// Handler wires the session manager to HTTP.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterPublicRoutes attaches routes reachable without a session.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/login", h.login)
	rg.POST("/auth/register", h.register)
}

// RegisterProtectedRoutes attaches session-gated routes; the admin subgroup
// additionally requires the ADMIN role.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/profile", h.profile)
	rg.PUT("/auth/profile", h.updateProfile)
	rg.PUT("/auth/change-password", h.changePassword)
	rg.GET("/auth/verify", h.verify)

	admin := rg.Group("/auth/users", middleware.RequireAdmin())
	admin.GET("", h.listUsers)
	admin.PUT("/:id/status", h.setUserStatus)
	admin.PUT("/:id/role", h.setUserRole)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "email and password are required", nil)
		return
	}

	session, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, session)
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}

	session, err := h.Svc.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, session)
}

func (h *Handler) profile(c *gin.Context) {
	user, err := h.Svc.Profile(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, user)
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}

	user, err := h.Svc.UpdateProfile(c.Request.Context(), middleware.UserIDFromContext(c), req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *Handler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}

	err := h.Svc.ChangePassword(c.Request.Context(), middleware.UserIDFromContext(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"changed": true})
}

// verify re-resolves the session token against the stored account. Clients
// call this once on startup; any failure clears their local session.
func (h *Handler) verify(c *gin.Context) {
	user, err := h.Svc.Profile(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !user.IsActive {
		respond.Error(c, http.StatusUnauthorized, respond.CodeAuthentication, "account disabled", nil)
		return
	}
	respond.OK(c, user)
}

func (h *Handler) listUsers(c *gin.Context) {
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 10)

	result, err := h.Svc.ListUsers(c.Request.Context(), page, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, result)
}

type setStatusRequest struct {
	IsActive *bool `json:"isActive"`
}

func (h *Handler) setUserStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "isActive is required", nil)
		return
	}

	user, err := h.Svc.SetUserStatus(c.Request.Context(), c.Param("id"), *req.IsActive)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, user)
}

type setRoleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) setUserRole(c *gin.Context) {
	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}

	user, err := h.Svc.SetUserRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, user)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var validation *ValidationError
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		respond.Error(c, http.StatusUnauthorized, respond.CodeAuthentication, "invalid credentials", nil)
	case errors.Is(err, ErrAccountDisabled):
		respond.Error(c, http.StatusUnauthorized, respond.CodeAuthentication, "account disabled", nil)
	case errors.Is(err, sharedauth.ErrInvalidToken):
		respond.Error(c, http.StatusUnauthorized, respond.CodeAuthentication, "missing or invalid token", nil)
	case errors.Is(err, users.ErrDuplicateEmail):
		respond.Error(c, http.StatusConflict, respond.CodeConflict, "email already registered", nil)
	case errors.Is(err, users.ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "user not found", nil)
	case errors.As(err, &validation):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "validation failed", validation.Issues)
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "unexpected error", nil)
	}
}

func intQuery(c *gin.Context, key string, def int) int {
	if raw := c.Query(key); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			return parsed
		}
	}
	return def
}

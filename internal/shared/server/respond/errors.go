package respond

import (
	"time"

	"github.com/gin-gonic/gin"

	"archive-backend/internal/shared/telemetry"
)

// Error codes used across handlers.
const (
	CodeAuthentication   = "authentication_error"
	CodePermissionDenied = "permission_denied"
	CodeValidation       = "validation_error"
	CodeNotFound         = "not_found"
	CodeConflict         = "conflict"
	CodeAnalysis         = "analysis_error"
	CodeNetwork          = "network_error"
	CodePersist          = "persist_error"
	CodeInternal         = "internal_error"
)

// ErrorEnvelope is the canonical failure response shape.
type ErrorEnvelope struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	Code       string `json:"code,omitempty"`
	StatusCode int    `json:"statusCode"`
	Details    any    `json:"details,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// Error sends a standardized error envelope and aborts the request.
func Error(c *gin.Context, status int, code, message string, details any) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Success:    false,
		Error:      message,
		Code:       code,
		StatusCode: status,
		Details:    details,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

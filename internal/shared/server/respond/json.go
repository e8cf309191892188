package respond

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Envelope is the canonical success response shape.
type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
}

// JSON writes a success envelope with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, Envelope{
		Success:   true,
		Data:      payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// OK writes a 200 OK success envelope.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

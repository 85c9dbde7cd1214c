package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Response is the envelope shared by every endpoint.
type Response struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Code      string    `json:"code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func respondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func respondCreated(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func respondError(c *gin.Context, err error) {
	status, code := MapError(err)
	c.JSON(status, Response{
		Success:   false,
		Message:   err.Error(),
		Code:      code,
		Timestamp: time.Now().UTC(),
	})
}

func respondValidation(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Success:   false,
		Message:   message,
		Code:      string(CodeValidationError),
		Timestamp: time.Now().UTC(),
	})
}

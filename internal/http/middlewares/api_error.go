package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError is the body of every error response: {"error": APIError}.
type APIError struct {
	Code      string      `json:"code"`
	Title     string      `json:"title"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

// Title names the error class for a status code.
func Title(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return "Validation failed"
	case http.StatusUnauthorized:
		return "Unauthorized access"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusNotFound:
		return "Not found"
	case http.StatusConflict:
		return "Conflict"
	case http.StatusTooManyRequests:
		return "Too many requests"
	case http.StatusRequestEntityTooLarge:
		return "Payload too large"
	case http.StatusUnsupportedMediaType:
		return "Unsupported media type"
	case http.StatusServiceUnavailable:
		return "Service unavailable"
	default:
		return "Server error"
	}
}

func NewAPIError(c *gin.Context, status int, code, message string, details interface{}) APIError {
	return APIError{
		Code:      code,
		Title:     Title(status),
		Message:   message,
		RequestID: RequestIDFromContext(c),
		Details:   details,
	}
}

// AbortWithError stops the chain and writes the error body.
func AbortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": NewAPIError(c, status, code, message, nil)})
}

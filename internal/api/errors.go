package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError is rendered as {"error": {"code", "message"}}.
type APIError struct {
	Status  int         `json:"-"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(status int, code, message string) *APIError {
	return &APIError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func Internal(message string) *APIError {
	if message == "" {
		message = "internal server error"
	}
	return NewAPIError(http.StatusInternalServerError, "internal_error", message)
}

func BadRequest(code, message string) *APIError {
	return NewAPIError(http.StatusBadRequest, code, message)
}

func NotFound(code, message string) *APIError {
	return NewAPIError(http.StatusNotFound, code, message)
}

func Gone(code, message string) *APIError {
	return NewAPIError(http.StatusGone, code, message)
}

func Unavailable(code, message string) *APIError {
	return NewAPIError(http.StatusServiceUnavailable, code, message)
}

func writeError(c *gin.Context, apiErr *APIError) {
	if apiErr == nil {
		apiErr = Internal("")
	}

	body := gin.H{
		"code":    apiErr.Code,
		"message": apiErr.Message,
	}
	if apiErr.Details != nil {
		body["details"] = apiErr.Details
	}
	c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": body})
}

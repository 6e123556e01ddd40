package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/memebuster/internal/service"
	"gorm.io/gorm"
)

// errorResponse is the fixed failure envelope every endpoint returns.
type errorResponse struct {
	Success  bool   `json:"success"`
	Category string `json:"category"`
	Message  string `json:"message"`
	Details  string `json:"details,omitempty"`
}

var categoryStatus = map[service.ErrorCategory]int{
	service.CategoryNotAMeme:             http.StatusUnprocessableEntity,
	service.CategoryServiceNotConfigured: http.StatusServiceUnavailable,
	service.CategoryRateLimited:          http.StatusTooManyRequests,
	service.CategoryInvalidResponse:      http.StatusBadGateway,
	service.CategoryInvalidImage:         http.StatusBadRequest,
	service.CategoryNetworkError:         http.StatusBadGateway,
	service.CategoryStorageError:         http.StatusInternalServerError,
	service.CategoryUnknown:              http.StatusInternalServerError,
}

// respondError maps any pipeline error onto the failure envelope with a
// category-appropriate HTTP status.
func respondError(c *gin.Context, err error) {
	var pe *service.PipelineError
	if errors.As(err, &pe) {
		status, ok := categoryStatus[pe.Category]
		if !ok {
			status = http.StatusInternalServerError
		}
		if errors.Is(pe.Err, gorm.ErrRecordNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, errorResponse{
			Success:  false,
			Category: string(pe.Category),
			Message:  pe.Message,
			Details:  pe.Details,
		})
		return
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, errorResponse{
			Success:  false,
			Category: string(service.CategoryStorageError),
			Message:  "Record not found",
		})
		return
	}

	c.JSON(http.StatusInternalServerError, errorResponse{
		Success:  false,
		Category: string(service.CategoryUnknown),
		Message:  "Internal error",
		Details:  err.Error(),
	})
}

// respondBadRequest reports a malformed client request.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorResponse{
		Success:  false,
		Category: string(service.CategoryUnknown),
		Message:  message,
	})
}

// respondOK wraps data in the success envelope.
func respondOK(c *gin.Context, data gin.H) {
	data["success"] = true
	c.JSON(http.StatusOK, data)
}

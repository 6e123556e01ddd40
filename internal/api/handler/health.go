package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/timmy/memebuster/internal/repository"
)

// HealthHandler handles the health check endpoint.
type HealthHandler struct {
	analysisRepo *repository.AnalysisRepository
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(analysisRepo *repository.AnalysisRepository) *HealthHandler {
	return &HealthHandler{analysisRepo: analysisRepo}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	status := "ok"
	var memes int64
	if h.analysisRepo != nil {
		count, err := h.analysisRepo.CountAll(c.Request.Context())
		if err != nil {
			status = "degraded"
		} else {
			memes = count
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  status,
		"service": "memebuster",
		"memes":   memes,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/memebuster/internal/domain"
	"github.com/timmy/memebuster/internal/repository"
)

// MemeHandler handles the gallery endpoints.
type MemeHandler struct {
	analysisRepo *repository.AnalysisRepository
}

// NewMemeHandler creates a new meme handler.
func NewMemeHandler(analysisRepo *repository.AnalysisRepository) *MemeHandler {
	return &MemeHandler{analysisRepo: analysisRepo}
}

// ListMemes handles GET /api/v1/memes with limit/offset pagination and an
// optional verdict filter.
func (h *MemeHandler) ListMemes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	verdict := ""
	if raw := c.Query("verdict"); raw != "" {
		parsed, ok := domain.ParseVerdict(raw)
		if !ok && raw != string(domain.VerdictPending) {
			respondBadRequest(c, "Unknown verdict filter: "+raw)
			return
		}
		if ok {
			verdict = string(parsed)
		} else {
			verdict = string(domain.VerdictPending)
		}
	}

	memes, total, err := h.analysisRepo.List(c.Request.Context(), verdict, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"memes":  memes,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetMeme handles GET /api/v1/memes/:id.
func (h *MemeHandler) GetMeme(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respondBadRequest(c, "Meme ID is required")
		return
	}

	meme, err := h.analysisRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"meme": meme})
}

// DeleteMeme handles DELETE /api/v1/memes/:id.
func (h *MemeHandler) DeleteMeme(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respondBadRequest(c, "Meme ID is required")
		return
	}

	if err := h.analysisRepo.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"deleted": id})
}

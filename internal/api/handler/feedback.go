package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/memebuster/internal/domain"
	"github.com/timmy/memebuster/internal/service"
)

// FeedbackHandler handles feedback submission and listing.
type FeedbackHandler struct {
	feedback *service.FeedbackService
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(feedback *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

type feedbackRequest struct {
	MemeID            string `json:"meme_id"`
	FeedbackType      string `json:"feedback_type"`
	UserContext       string `json:"user_context"`
	CulturalContext   string `json:"cultural_context"`
	HistoricalContext string `json:"historical_context"`
	AdditionalSources string `json:"additional_sources"`
}

var validFeedbackTypes = map[domain.FeedbackType]bool{
	domain.FeedbackTypeClarify:   true,
	domain.FeedbackTypeDispute:   true,
	domain.FeedbackTypeReanalyze: true,
}

// Submit handles POST /api/v1/feedback.
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid JSON body")
		return
	}

	if req.MemeID == "" {
		respondBadRequest(c, "meme_id is required")
		return
	}
	if req.UserContext == "" {
		respondBadRequest(c, "user_context is required")
		return
	}
	feedbackType := domain.FeedbackType(req.FeedbackType)
	if !validFeedbackTypes[feedbackType] {
		respondBadRequest(c, "feedback_type must be one of: clarify, dispute, reanalyze")
		return
	}

	result, err := h.feedback.Submit(c.Request.Context(), service.SubmitInput{
		MemeID:            req.MemeID,
		FeedbackType:      feedbackType,
		UserContext:       req.UserContext,
		CulturalContext:   req.CulturalContext,
		HistoricalContext: req.HistoricalContext,
		AdditionalSources: req.AdditionalSources,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"feedback":   result.Feedback,
		"evaluation": result.Evaluation,
		"reanalyzed": result.Reanalyzed,
		"analysis":   result.Updated,
	})
}

// List handles GET /api/v1/feedback?meme_id=...
func (h *FeedbackHandler) List(c *gin.Context) {
	memeID := c.Query("meme_id")
	if memeID == "" {
		respondBadRequest(c, "meme_id query parameter is required")
		return
	}

	items, err := h.feedback.ListByMemeID(c.Request.Context(), memeID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"feedback": items, "total": len(items)})
}

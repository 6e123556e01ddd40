package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/memebuster/internal/domain"
	"github.com/timmy/memebuster/internal/prompts"
	"github.com/timmy/memebuster/internal/repository"
	"github.com/timmy/memebuster/internal/service"
)

// AdminHandler handles the token-gated maintenance endpoints: prompt
// management, bulk operations, and duplicate cleanup.
type AdminHandler struct {
	admin      *service.AdminService
	promptRepo *repository.PromptRepository
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(admin *service.AdminService, promptRepo *repository.PromptRepository) *AdminHandler {
	return &AdminHandler{admin: admin, promptRepo: promptRepo}
}

// ListPrompts handles GET /api/v1/admin/prompts.
func (h *AdminHandler) ListPrompts(c *gin.Context) {
	items, err := h.promptRepo.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"prompts": items, "total": len(items)})
}

// InitPrompts handles POST /api/v1/admin/prompts: seeds the default prompt
// texts for any name not yet present. Idempotent.
func (h *AdminHandler) InitPrompts(c *gin.Context) {
	defaults := []domain.Prompt{
		{Name: prompts.NameMemeAnalysis, VersionName: "default", PromptText: prompts.AnalysisPrompt},
		{Name: prompts.NameMemeRecognition, VersionName: "default", PromptText: prompts.RecognitionPrompt},
		{Name: prompts.NameFeedbackEvaluation, VersionName: "default", PromptText: prompts.FeedbackEvaluationPrompt},
	}
	if err := h.promptRepo.EnsureDefaults(c.Request.Context(), defaults); err != nil {
		respondError(c, err)
		return
	}

	items, err := h.promptRepo.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"prompts": items})
}

type updatePromptRequest struct {
	ID          string `json:"id"`
	PromptText  string `json:"prompt_text"`
	Description string `json:"description"`
	VersionName string `json:"version_name"`
}

// UpdatePrompt handles PUT /api/v1/admin/prompts: edits a version in place.
func (h *AdminHandler) UpdatePrompt(c *gin.Context) {
	var req updatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid JSON body")
		return
	}
	if req.ID == "" || req.PromptText == "" {
		respondBadRequest(c, "id and prompt_text are required")
		return
	}

	prompt, err := h.promptRepo.Update(c.Request.Context(), req.ID, req.PromptText, req.Description, req.VersionName)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"prompt": prompt})
}

type createVersionRequest struct {
	Name            string `json:"name"`
	VersionName     string `json:"version_name"`
	Description     string `json:"description"`
	PromptText      string `json:"prompt_text"`
	ParentVersionID string `json:"parent_version_id"`
}

// CreatePromptVersion handles POST /api/v1/admin/prompts/version: creates a
// new version that becomes current.
func (h *AdminHandler) CreatePromptVersion(c *gin.Context) {
	var req createVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid JSON body")
		return
	}
	if req.Name == "" || req.PromptText == "" {
		respondBadRequest(c, "name and prompt_text are required")
		return
	}

	prompt, err := h.promptRepo.CreateVersion(c.Request.Context(), &domain.Prompt{
		Name:            req.Name,
		VersionName:     req.VersionName,
		Description:     req.Description,
		PromptText:      req.PromptText,
		ParentVersionID: req.ParentVersionID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"prompt": prompt})
}

type bulkRequest struct {
	IDs []string `json:"ids"`
}

// BulkReanalyze handles POST /api/v1/admin/bulk/reanalyze. Empty ids means
// every record.
func (h *AdminHandler) BulkReanalyze(c *gin.Context) {
	var req bulkRequest
	_ = c.ShouldBindJSON(&req)

	summary, err := h.admin.BulkReanalyze(c.Request.Context(), req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"summary": summary})
}

// BulkDelete handles POST /api/v1/admin/bulk/delete. Empty ids means every
// record.
func (h *AdminHandler) BulkDelete(c *gin.Context) {
	var req bulkRequest
	_ = c.ShouldBindJSON(&req)

	summary, err := h.admin.BulkDelete(c.Request.Context(), req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"summary": summary})
}

// FindDuplicates handles GET /api/v1/admin/duplicates.
func (h *AdminHandler) FindDuplicates(c *gin.Context) {
	groups, err := h.admin.FindDuplicates(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"groups": groups, "total": len(groups)})
}

type resolveDuplicatesRequest struct {
	Groups []service.DuplicateGroup `json:"groups"`
}

// ResolveDuplicates handles POST /api/v1/admin/duplicates/resolve. With no
// body the current scan is resolved keeping the oldest record per group.
func (h *AdminHandler) ResolveDuplicates(c *gin.Context) {
	var req resolveDuplicatesRequest
	_ = c.ShouldBindJSON(&req)

	groups, err := h.admin.ResolveDuplicates(c.Request.Context(), req.Groups)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"groups": groups})
}

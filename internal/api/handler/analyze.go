package handler

import (
	"bytes"
	"io"
	"mime"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/timmy/memebuster/internal/api/middleware"
	"github.com/timmy/memebuster/internal/service"
	"github.com/timmy/memebuster/internal/storage"
)

// AnalyzeHandler handles the analysis endpoints.
type AnalyzeHandler struct {
	analysis        *service.AnalysisService
	store           storage.ObjectStorage
	bulkConcurrency int
}

// NewAnalyzeHandler creates a new analyze handler. store may be nil; uploads
// are then persisted as data URLs.
func NewAnalyzeHandler(analysis *service.AnalysisService, store storage.ObjectStorage, bulkConcurrency int) *AnalyzeHandler {
	return &AnalyzeHandler{
		analysis:        analysis,
		store:           store,
		bulkConcurrency: bulkConcurrency,
	}
}

// Analyze handles POST /api/v1/analyze (multipart image upload).
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		respondBadRequest(c, "Missing image file in form field 'image'")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxImageBytes+1))
	if err != nil {
		respondBadRequest(c, "Failed to read uploaded image")
		return
	}

	mimeType, err := service.ValidateImage(data)
	if err != nil {
		respondError(c, err)
		return
	}

	title := c.PostForm("title")
	if title == "" && header != nil {
		title = header.Filename
	}

	dataURL := service.EncodeDataURL(mimeType, data)
	persistURL := h.uploadToStorage(c, mimeType, data)

	result, err := h.analysis.AnalyzeAndSaveAs(c.Request.Context(), dataURL, persistURL, title, "", c.PostForm("context"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"analysis": result})
}

// uploadToStorage persists upload bytes to object storage when configured.
// Returns the public URL, or empty to fall back to data-URL persistence.
func (h *AnalyzeHandler) uploadToStorage(c *gin.Context, mimeType string, data []byte) string {
	if h.store == nil {
		return ""
	}

	exts, _ := mime.ExtensionsByType(mimeType)
	ext := ".jpg"
	if len(exts) > 0 {
		ext = exts[len(exts)-1]
	}
	key := "memes/" + uuid.New().String() + ext

	err := h.store.Upload(c.Request.Context(), key, bytes.NewReader(data), int64(len(data)), mimeType)
	if err != nil {
		middleware.GetLogger(c).WithError(err).Warn("Object storage upload failed, persisting data URL instead")
		return ""
	}
	return h.store.GetURL(key)
}

type analyzeURLRequest struct {
	ImageURL string `json:"image_url"`
	MemeID   string `json:"meme_id"`
	Title    string `json:"title"`
}

// AnalyzeURL handles POST /api/v1/analyze-url. With meme_id set the existing
// record is re-analyzed in place; otherwise a new record is created.
func (h *AnalyzeHandler) AnalyzeURL(c *gin.Context) {
	var req analyzeURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid JSON body")
		return
	}

	if req.MemeID != "" {
		result, err := h.analysis.Reanalyze(c.Request.Context(), req.MemeID, "", false)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, gin.H{"analysis": result})
		return
	}

	if !isHTTPURL(req.ImageURL) {
		respondBadRequest(c, "image_url must be an absolute http(s) URL")
		return
	}

	result, err := h.analysis.AnalyzeAndSave(c.Request.Context(), req.ImageURL, req.Title, req.ImageURL, "")
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"analysis": result})
}

type bulkAnalyzeRequest struct {
	Memes []service.BulkAnalyzeEntry `json:"memes"`
}

// BulkAnalyze handles POST /api/v1/bulk-analyze.
func (h *AnalyzeHandler) BulkAnalyze(c *gin.Context) {
	var req bulkAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid JSON body")
		return
	}
	if len(req.Memes) == 0 {
		respondBadRequest(c, "memes list is empty")
		return
	}

	summary := h.analysis.BulkAnalyze(c.Request.Context(), req.Memes, h.bulkConcurrency)
	respondOK(c, gin.H{"summary": summary})
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" && !strings.Contains(raw, " ")
}

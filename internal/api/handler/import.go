package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/memebuster/internal/service"
)

// ImportHandler handles Reddit and URL bulk import endpoints.
type ImportHandler struct {
	importSvc *service.ImportService
	cfg       service.ImportConfig
}

// NewImportHandler creates a new import handler.
func NewImportHandler(importSvc *service.ImportService, cfg service.ImportConfig) *ImportHandler {
	return &ImportHandler{importSvc: importSvc, cfg: cfg}
}

type fetchMemesRequest struct {
	Subreddits []string `json:"subreddits"`
	Limit      int      `json:"limit"`
}

// FetchMemes handles POST /api/v1/fetch-memes: pulls hot image posts from
// caller-selected subreddits.
func (h *ImportHandler) FetchMemes(c *gin.Context) {
	var req fetchMemesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid JSON body")
		return
	}
	if len(req.Subreddits) == 0 {
		respondBadRequest(c, "subreddits list is empty")
		return
	}

	maxImports := req.Limit
	if maxImports <= 0 || maxImports > h.cfg.ManualCap {
		maxImports = h.cfg.ManualCap
	}

	summary, err := h.importSvc.FetchFromSubreddits(c.Request.Context(), req.Subreddits, h.cfg.PerSubredditLimit, maxImports)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"summary": summary})
}

// QuickFill handles POST /api/v1/quick-fill: pulls from the fixed subreddit
// list with the default caps.
func (h *ImportHandler) QuickFill(c *gin.Context) {
	summary, err := h.importSvc.QuickFill(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"summary": summary})
}

type importURLsRequest struct {
	URLs []string `json:"urls"`
}

// ImportURLs handles POST /api/v1/import-urls: downloads and fully analyzes
// each URL.
func (h *ImportHandler) ImportURLs(c *gin.Context) {
	var req importURLsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid JSON body")
		return
	}
	if len(req.URLs) == 0 {
		respondBadRequest(c, "urls list is empty")
		return
	}
	for _, u := range req.URLs {
		if !isHTTPURL(u) {
			respondBadRequest(c, "not an absolute http(s) URL: "+u)
			return
		}
	}

	summary, err := h.importSvc.ImportURLs(c.Request.Context(), req.URLs)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"summary": summary})
}

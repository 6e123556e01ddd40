package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/memebuster/internal/api/handler"
	"github.com/timmy/memebuster/internal/api/middleware"
	"github.com/timmy/memebuster/internal/logger"
	"github.com/timmy/memebuster/internal/repository"
	"github.com/timmy/memebuster/internal/service"
	"github.com/timmy/memebuster/internal/storage"
)

// RouterDeps bundles everything the HTTP surface needs.
type RouterDeps struct {
	Analysis     *service.AnalysisService
	Feedback     *service.FeedbackService
	Import       *service.ImportService
	Admin        *service.AdminService
	AnalysisRepo *repository.AnalysisRepository
	PromptRepo   *repository.PromptRepository
	Store        storage.ObjectStorage
	ImportConfig service.ImportConfig
	CORS         middleware.CORSConfig
	AdminToken   string
	Mode         string
	Logger       *logger.Logger
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(deps RouterDeps) *gin.Engine {
	switch deps.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.CORS))

	healthHandler := handler.NewHealthHandler(deps.AnalysisRepo)
	analyzeHandler := handler.NewAnalyzeHandler(deps.Analysis, deps.Store, deps.ImportConfig.BulkConcurrency)
	memeHandler := handler.NewMemeHandler(deps.AnalysisRepo)
	feedbackHandler := handler.NewFeedbackHandler(deps.Feedback)
	importHandler := handler.NewImportHandler(deps.Import, deps.ImportConfig)
	adminHandler := handler.NewAdminHandler(deps.Admin, deps.PromptRepo)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		// Analysis
		v1.POST("/analyze", analyzeHandler.Analyze)
		v1.POST("/analyze-url", analyzeHandler.AnalyzeURL)
		v1.POST("/bulk-analyze", analyzeHandler.BulkAnalyze)

		// Import
		v1.POST("/import-urls", importHandler.ImportURLs)
		v1.POST("/fetch-memes", importHandler.FetchMemes)
		v1.POST("/quick-fill", importHandler.QuickFill)

		// Feedback
		v1.POST("/feedback", feedbackHandler.Submit)
		v1.GET("/feedback", feedbackHandler.List)

		// Gallery
		v1.GET("/memes", memeHandler.ListMemes)
		v1.GET("/memes/:id", memeHandler.GetMeme)
		v1.DELETE("/memes/:id", memeHandler.DeleteMeme)

		// Admin
		admin := v1.Group("/admin", middleware.AdminAuth(deps.AdminToken))
		{
			admin.GET("/prompts", adminHandler.ListPrompts)
			admin.POST("/prompts", adminHandler.InitPrompts)
			admin.PUT("/prompts", adminHandler.UpdatePrompt)
			admin.POST("/prompts/version", adminHandler.CreatePromptVersion)
			admin.POST("/bulk/reanalyze", adminHandler.BulkReanalyze)
			admin.POST("/bulk/delete", adminHandler.BulkDelete)
			admin.GET("/duplicates", adminHandler.FindDuplicates)
			admin.POST("/duplicates/resolve", adminHandler.ResolveDuplicates)
		}
	}

	return r
}

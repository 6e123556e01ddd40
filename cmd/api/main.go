package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/memebuster/internal/api"
	"github.com/timmy/memebuster/internal/api/middleware"
	"github.com/timmy/memebuster/internal/config"
	"github.com/timmy/memebuster/internal/domain"
	"github.com/timmy/memebuster/internal/logger"
	"github.com/timmy/memebuster/internal/prompts"
	"github.com/timmy/memebuster/internal/repository"
	"github.com/timmy/memebuster/internal/service"
	"github.com/timmy/memebuster/internal/source/reddit"
	"github.com/timmy/memebuster/internal/storage"
)

func main() {
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		LogFile:     cfg.Log.File,
		ServiceName: "memebuster-api",
	})
	logger.SetDefault(appLogger)

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	analysisRepo := repository.NewAnalysisRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	promptRepo := repository.NewPromptRepository(db)

	if err := seedPrompts(promptRepo); err != nil {
		appLogger.WithError(err).Fatal("Failed to seed default prompts")
	}

	var store storage.ObjectStorage
	if cfg.Storage.Enabled {
		s3Store, err := storage.NewS3Storage(&storage.S3Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			PublicURL: cfg.Storage.PublicURL,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize object storage")
		}
		store = s3Store
		appLogger.WithField("bucket", cfg.Storage.Bucket).Info("Object storage enabled")
	}

	visionService := service.NewVisionService(&service.VisionConfig{
		Model:     cfg.Vision.Model,
		EvalModel: cfg.Vision.EvalModel,
		APIKey:    cfg.Vision.APIKey,
		BaseURL:   cfg.Vision.BaseURL,
		Timeout:   cfg.Vision.Timeout,
	})
	if cfg.Vision.APIKey == "" {
		appLogger.Warn("Vision API key is not set; analysis endpoints will report service_not_configured")
	}

	recognitionService := service.NewRecognitionService(visionService, promptRepo, appLogger)
	analysisService := service.NewAnalysisService(visionService, recognitionService, analysisRepo, promptRepo, appLogger)
	feedbackService := service.NewFeedbackService(visionService, analysisService, feedbackRepo, promptRepo, appLogger)

	redditClient := reddit.NewClient(reddit.Config{
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		UserAgent:    cfg.Reddit.UserAgent,
	}, appLogger)

	importConfig := service.ImportConfig{
		Subreddits:        cfg.Reddit.Subreddits,
		PerSubredditLimit: cfg.Reddit.PerSubredditLimit,
		FetchDelay:        cfg.Reddit.FetchDelay,
		QuickFillCap:      cfg.Reddit.QuickFillCap,
		ManualCap:         cfg.Reddit.ManualCap,
		BulkConcurrency:   cfg.Bulk.Concurrency,
	}
	importService := service.NewImportService(redditClient, analysisService, analysisRepo, importConfig, appLogger)
	adminService := service.NewAdminService(analysisService, analysisRepo, cfg.Bulk.Concurrency, appLogger)

	router := api.SetupRouter(api.RouterDeps{
		Analysis:     analysisService,
		Feedback:     feedbackService,
		Import:       importService,
		Admin:        adminService,
		AnalysisRepo: analysisRepo,
		PromptRepo:   promptRepo,
		Store:        store,
		ImportConfig: importConfig,
		CORS: middleware.CORSConfig{
			AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
			AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
		},
		AdminToken: cfg.Admin.Token,
		Mode:       cfg.Server.Mode,
		Logger:     appLogger,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithField("port", cfg.Server.Port).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.WithError(err).Error("Forced shutdown")
	}
	appLogger.Info("Server stopped")
}

// seedPrompts inserts the default prompt texts for any name not present yet.
func seedPrompts(repo *repository.PromptRepository) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return repo.EnsureDefaults(ctx, []domain.Prompt{
		{Name: prompts.NameMemeAnalysis, VersionName: "default", PromptText: prompts.AnalysisPrompt},
		{Name: prompts.NameMemeRecognition, VersionName: "default", PromptText: prompts.RecognitionPrompt},
		{Name: prompts.NameFeedbackEvaluation, VersionName: "default", PromptText: prompts.FeedbackEvaluationPrompt},
	})
}

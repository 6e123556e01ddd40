package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/timmy/memebuster/internal/config"
	"github.com/timmy/memebuster/internal/logger"
	"github.com/timmy/memebuster/internal/repository"
	"github.com/timmy/memebuster/internal/service"
	"github.com/timmy/memebuster/internal/source/reddit"
)

// Command-line importer: pulls hot image posts from Reddit into the store as
// pending records, same pipeline as the quick-fill endpoint.
func main() {
	subreddits := flag.String("subreddits", "", "Comma-separated subreddit list; empty uses the configured quick-fill set")
	limit := flag.Int("limit", 0, "Max records to import; 0 uses the configured cap")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "memebuster-import",
	})
	logger.SetDefault(appLogger)

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	analysisRepo := repository.NewAnalysisRepository(db)
	promptRepo := repository.NewPromptRepository(db)

	visionService := service.NewVisionService(&service.VisionConfig{
		Model:     cfg.Vision.Model,
		EvalModel: cfg.Vision.EvalModel,
		APIKey:    cfg.Vision.APIKey,
		BaseURL:   cfg.Vision.BaseURL,
		Timeout:   cfg.Vision.Timeout,
	})
	recognitionService := service.NewRecognitionService(visionService, promptRepo, appLogger)
	analysisService := service.NewAnalysisService(visionService, recognitionService, analysisRepo, promptRepo, appLogger)

	redditClient := reddit.NewClient(reddit.Config{
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		UserAgent:    cfg.Reddit.UserAgent,
	}, appLogger)

	importService := service.NewImportService(redditClient, analysisService, analysisRepo, service.ImportConfig{
		Subreddits:        cfg.Reddit.Subreddits,
		PerSubredditLimit: cfg.Reddit.PerSubredditLimit,
		FetchDelay:        cfg.Reddit.FetchDelay,
		QuickFillCap:      cfg.Reddit.QuickFillCap,
		ManualCap:         cfg.Reddit.ManualCap,
		BulkConcurrency:   cfg.Bulk.Concurrency,
	}, appLogger)

	ctx := context.Background()

	var summary *service.ImportSummary
	if *subreddits == "" {
		summary, err = importService.QuickFill(ctx)
	} else {
		list := splitList(*subreddits)
		maxImports := *limit
		if maxImports <= 0 || maxImports > cfg.Reddit.ManualCap {
			maxImports = cfg.Reddit.ManualCap
		}
		summary, err = importService.FetchFromSubreddits(ctx, list, cfg.Reddit.PerSubredditLimit, maxImports)
	}
	if err != nil {
		appLogger.WithError(err).Fatal("Import failed")
	}

	appLogger.WithFields(logger.Fields{
		"fetched":  summary.Fetched,
		"skipped":  summary.Skipped,
		"imported": summary.Imported,
	}).Info("Import finished")
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

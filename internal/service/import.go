package service

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/timmy/memebuster/internal/batch"
	"github.com/timmy/memebuster/internal/domain"
	"github.com/timmy/memebuster/internal/logger"
	"github.com/timmy/memebuster/internal/repository"
	"github.com/timmy/memebuster/internal/source"
)

// ImportConfig bounds Reddit fetching behavior.
type ImportConfig struct {
	Subreddits        []string
	PerSubredditLimit int
	FetchDelay        time.Duration
	QuickFillCap      int
	ManualCap         int
	BulkConcurrency   int
}

// ImportSummary reports the outcome of a bulk import.
type ImportSummary struct {
	Fetched  int           `json:"fetched"`
	Skipped  int           `json:"skipped"`
	Imported int           `json:"imported"`
	Batch    batch.Summary `json:"batch,omitempty"`
}

// ImportService pulls candidate memes from external feeds and inserts them as
// pending records, skipping anything that looks like an existing image.
type ImportService struct {
	feed         source.Feed
	analysis     *AnalysisService
	analysisRepo *repository.AnalysisRepository
	cfg          ImportConfig
	downloader   *resty.Client
	logger       *logger.Logger
}

// NewImportService creates an import service.
func NewImportService(
	feed source.Feed,
	analysis *AnalysisService,
	analysisRepo *repository.AnalysisRepository,
	cfg ImportConfig,
	log *logger.Logger,
) *ImportService {
	return &ImportService{
		feed:         feed,
		analysis:     analysis,
		analysisRepo: analysisRepo,
		cfg:          cfg,
		downloader:   resty.New().SetTimeout(30 * time.Second),
		logger:       log,
	}
}

func (s *ImportService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// dedupIndex answers "have we probably seen this image before" three ways:
// exact URL, final path segment, and filename stem. Different CDN hosts often
// serve the same file under the same name.
type dedupIndex struct {
	urls      map[string]bool
	filenames map[string]bool
	stems     map[string]bool
}

func newDedupIndex(existing []string) *dedupIndex {
	idx := &dedupIndex{
		urls:      make(map[string]bool, len(existing)),
		filenames: make(map[string]bool, len(existing)),
		stems:     make(map[string]bool, len(existing)),
	}
	for _, u := range existing {
		idx.add(u)
	}
	return idx
}

func (idx *dedupIndex) add(rawURL string) {
	idx.urls[rawURL] = true
	if name := urlFilename(rawURL); name != "" {
		idx.filenames[name] = true
		idx.stems[filenameStem(name)] = true
	}
}

func (idx *dedupIndex) isLikelyDuplicate(rawURL string) bool {
	if idx.urls[rawURL] {
		return true
	}
	name := urlFilename(rawURL)
	if name == "" {
		return false
	}
	return idx.filenames[name] || idx.stems[filenameStem(name)]
}

// urlFilename extracts the final path segment, lowercased, query stripped.
func urlFilename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return ""
	}
	return strings.ToLower(name)
}

// filenameStem strips the extension from a filename.
func filenameStem(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

// buildDedupIndex loads every stored image URL into a fresh index.
func (s *ImportService) buildDedupIndex(ctx context.Context) (*dedupIndex, error) {
	existing, err := s.analysisRepo.ListImageURLs(ctx)
	if err != nil {
		return nil, newPipelineError(CategoryStorageError,
			"Failed to load existing image URLs for deduplication", err.Error(), err)
	}
	return newDedupIndex(existing), nil
}

// QuickFill fetches hot posts from the configured subreddits and stores the
// top-scoring non-duplicates as pending records. Fetches are sequential with
// a politeness delay between subreddits.
func (s *ImportService) QuickFill(ctx context.Context) (*ImportSummary, error) {
	return s.FetchFromSubreddits(ctx, s.cfg.Subreddits, s.cfg.PerSubredditLimit, s.cfg.QuickFillCap)
}

// FetchFromSubreddits fetches hot image posts from the given subreddits,
// deduplicates against stored records, and inserts the top posts by score as
// pending records up to maxImports.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - subreddits: subreddit names to pull from.
//   - perLimit: max posts requested per subreddit.
//   - maxImports: max records inserted across all subreddits.
//
// Returns:
//   - *ImportSummary: fetched/skipped/imported counts.
//   - error: non-nil when the dedup index cannot be built or every fetch fails.
func (s *ImportService) FetchFromSubreddits(ctx context.Context, subreddits []string, perLimit, maxImports int) (*ImportSummary, error) {
	idx, err := s.buildDedupIndex(ctx)
	if err != nil {
		return nil, err
	}

	var posts []source.Post
	fetchFailures := 0
	for i, subreddit := range subreddits {
		if i > 0 && s.cfg.FetchDelay > 0 {
			select {
			case <-time.After(s.cfg.FetchDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		fetched, err := s.feed.FetchHot(ctx, subreddit, perLimit)
		if err != nil {
			fetchFailures++
			s.log(ctx).WithError(err).WithField(logger.FieldSubreddit, subreddit).
				Warn("Subreddit fetch failed, continuing with the rest")
			continue
		}
		posts = append(posts, fetched...)
	}
	if len(subreddits) > 0 && fetchFailures == len(subreddits) {
		return nil, newPipelineError(CategoryNetworkError,
			"All subreddit fetches failed",
			"Could not reach the Reddit API for any configured subreddit.", nil)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Score > posts[j].Score
	})

	summary := &ImportSummary{Fetched: len(posts)}
	for _, post := range posts {
		if summary.Imported >= maxImports {
			break
		}
		if idx.isLikelyDuplicate(post.URL) {
			summary.Skipped++
			continue
		}

		record := &domain.MemeAnalysis{
			ID:         uuid.New().String(),
			ImageURL:   post.URL,
			Title:      post.Title,
			SourceURL:  post.Permalink,
			Verdict:    domain.VerdictPending,
			Confidence: 0,
			AnalyzedAt: time.Now(),
		}
		if err := s.analysisRepo.Create(ctx, record); err != nil {
			s.log(ctx).WithError(err).Warn("Failed to insert imported meme, skipping")
			summary.Skipped++
			continue
		}
		idx.add(post.URL)
		summary.Imported++
	}

	s.log(ctx).WithFields(logger.Fields{
		"fetched":  summary.Fetched,
		"skipped":  summary.Skipped,
		"imported": summary.Imported,
	}).Info("Subreddit import complete")

	return summary, nil
}

// ImportURLs downloads each image URL, runs the full analysis pipeline on it,
// and stores the results. Duplicates are skipped up front; per-URL failures
// are reported in the batch summary without aborting the run.
func (s *ImportService) ImportURLs(ctx context.Context, urls []string) (*ImportSummary, error) {
	idx, err := s.buildDedupIndex(ctx)
	if err != nil {
		return nil, err
	}

	fresh := make([]string, 0, len(urls))
	summary := &ImportSummary{Fetched: len(urls)}
	for _, u := range urls {
		if idx.isLikelyDuplicate(u) {
			summary.Skipped++
			continue
		}
		fresh = append(fresh, u)
	}

	summary.Batch = batch.Run(ctx, fresh, s.cfg.BulkConcurrency, func(ctx context.Context, item string) error {
		dataURL, err := s.downloadAsDataURL(ctx, item)
		if err != nil {
			return err
		}
		_, err = s.analysis.AnalyzeAndSave(ctx, dataURL, urlFilename(item), item, "")
		return err
	})
	summary.Imported = summary.Batch.Succeeded

	return summary, nil
}

// downloadAsDataURL fetches an image and re-encodes it as a data URL so the
// LLM API never depends on the remote host staying up.
func (s *ImportService) downloadAsDataURL(ctx context.Context, imageURL string) (string, error) {
	resp, err := s.downloader.R().SetContext(ctx).Get(imageURL)
	if err != nil {
		return "", newPipelineError(CategoryNetworkError,
			"Failed to download image", imageURL, err)
	}
	if resp.StatusCode() != 200 {
		return "", newPipelineError(CategoryNetworkError,
			"Failed to download image",
			fmt.Sprintf("%s returned status %d", imageURL, resp.StatusCode()), nil)
	}

	body := resp.Body()
	mimeType, err := ValidateImage(body)
	if err != nil {
		return "", err
	}
	return EncodeDataURL(mimeType, body), nil
}

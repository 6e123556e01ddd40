package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/memebuster/internal/batch"
	"github.com/timmy/memebuster/internal/domain"
	"github.com/timmy/memebuster/internal/logger"
	"github.com/timmy/memebuster/internal/prompts"
	"github.com/timmy/memebuster/internal/repository"
	"gorm.io/gorm"
)

// AnalysisOutcome is the validated result of the two-stage pipeline before
// persistence.
type AnalysisOutcome struct {
	Verdict     domain.Verdict     `json:"verdict"`
	Confidence  int                `json:"confidence"`
	Claims      []domain.Claim     `json:"claims"`
	Recognition *RecognitionResult `json:"recognition,omitempty"`
}

// AnalysisService runs the recognition gate plus the claim fact-check stage
// and persists validated results. Re-analysis always updates the existing
// row; the same meme never gets a second record.
type AnalysisService struct {
	vision       *VisionService
	recognition  *RecognitionService
	analysisRepo *repository.AnalysisRepository
	promptRepo   *repository.PromptRepository
	logger       *logger.Logger
}

// NewAnalysisService creates a new analysis service.
// Parameters:
//   - vision: LLM client shared across stages.
//   - recognition: the pre-check gate.
//   - analysisRepo: persistence for results.
//   - promptRepo: database-backed prompt texts.
//   - log: logger instance.
//
// Returns:
//   - *AnalysisService: initialized service.
func NewAnalysisService(
	vision *VisionService,
	recognition *RecognitionService,
	analysisRepo *repository.AnalysisRepository,
	promptRepo *repository.PromptRepository,
	log *logger.Logger,
) *AnalysisService {
	return &AnalysisService{
		vision:       vision,
		recognition:  recognition,
		analysisRepo: analysisRepo,
		promptRepo:   promptRepo,
		logger:       log,
	}
}

func (s *AnalysisService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// Perform runs recognition and, when the image passes the gate, the claim
// analysis stage. It does not persist anything.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - imageData: data URL or https URL of the image.
//   - additionalContext: optional human feedback appended to the prompt.
//
// Returns:
//   - *AnalysisOutcome: validated verdict and claims.
//   - error: *PipelineError; CategoryNotAMeme when the gate rejects.
func (s *AnalysisService) Perform(ctx context.Context, imageData, additionalContext string) (*AnalysisOutcome, error) {
	recognition, err := s.recognition.Recognize(ctx, imageData)
	if err != nil {
		return nil, err
	}

	if recognition.Confidence < RecognitionThreshold {
		details := fmt.Sprintf("Reasons:\n%s\n\nExplanation: %s",
			bulletList(recognition.RejectionReasons), recognition.Reasoning)
		return nil, newPipelineError(CategoryNotAMeme,
			fmt.Sprintf("This doesn't appear to be a meme (%d%% confidence)", recognition.Confidence),
			details, nil)
	}

	s.log(ctx).WithField("confidence", recognition.Confidence).
		Info("Image recognized as meme, proceeding to claim analysis")

	promptText := prompts.AnalysisPrompt
	if s.promptRepo != nil {
		if p, err := s.promptRepo.GetCurrent(ctx, prompts.NameMemeAnalysis); err == nil {
			promptText = p.PromptText
		} else {
			s.log(ctx).WithField(logger.FieldPrompt, prompts.NameMemeAnalysis).
				Warn("Failed to fetch analysis prompt from database, using fallback")
		}
	}

	fullPrompt := promptText + prompts.AnalysisFormatInstructions
	if additionalContext != "" {
		fullPrompt += prompts.FeedbackContextHeader + additionalContext + prompts.FeedbackContextFooter
	}

	responseText, err := s.vision.CompleteVision(ctx, fullPrompt, imageData, CallOptions{
		MaxTokens:   4000,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, err
	}

	raw, err := ExtractJSON(responseText)
	if err != nil {
		return nil, newPipelineError(CategoryInvalidResponse,
			"AI analysis response is not valid JSON", err.Error(), err)
	}

	outcome, err := parseAnalysis(raw)
	if err != nil {
		return nil, newPipelineError(CategoryInvalidResponse,
			"AI response validation failed",
			"The AI model returned a response that doesn't match the expected format: "+err.Error()+
				". Please try analyzing the meme again.", err)
	}
	outcome.Recognition = recognition

	return outcome, nil
}

// AnalyzeAndSave runs the full pipeline and inserts a new analysis record
// storing imageData as the image URL.
func (s *AnalysisService) AnalyzeAndSave(ctx context.Context, imageData, title, sourceURL, additionalContext string) (*domain.MemeAnalysis, error) {
	return s.AnalyzeAndSaveAs(ctx, imageData, "", title, sourceURL, additionalContext)
}

// AnalyzeAndSaveAs runs the full pipeline on imageData and inserts a new
// record. persistURL, when set, is stored instead of imageData; uploads that
// went to object storage keep a stable URL rather than a base64 payload.
func (s *AnalysisService) AnalyzeAndSaveAs(ctx context.Context, imageData, persistURL, title, sourceURL, additionalContext string) (*domain.MemeAnalysis, error) {
	outcome, err := s.Perform(ctx, imageData, additionalContext)
	if err != nil {
		return nil, err
	}

	storedURL := persistURL
	if storedURL == "" {
		storedURL = imageData
	}

	record := &domain.MemeAnalysis{
		ID:                 uuid.New().String(),
		ImageURL:           storedURL,
		Title:              title,
		SourceURL:          sourceURL,
		Verdict:            outcome.Verdict,
		Confidence:         outcome.Confidence,
		OverallExplanation: joinExplanations(outcome.Claims),
		Claims:             outcome.Claims,
		Sources:            flattenSources(outcome.Claims),
		AnalyzedAt:         time.Now(),
	}

	if err := s.analysisRepo.Create(ctx, record); err != nil {
		return nil, newPipelineError(CategoryStorageError,
			"Failed to save analysis",
			fmt.Sprintf("Database error: %v. Please try again or contact support if the issue persists.", err), err)
	}

	s.log(ctx).WithFields(logger.Fields{
		logger.FieldMemeID: record.ID,
		"verdict":          record.Verdict,
		"claims":           len(record.Claims),
	}).Info("Analysis saved")

	return record, nil
}

// Reanalyze re-runs the pipeline against an existing record's image and
// overwrites the record in place. The row count never changes.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - memeID: ID of the existing record.
//   - additionalContext: optional feedback context for the prompt.
//   - feedbackIncorporated: marks the record as feedback-driven.
//
// Returns:
//   - *domain.MemeAnalysis: the updated record.
//   - error: *PipelineError on pipeline or storage failure.
func (s *AnalysisService) Reanalyze(ctx context.Context, memeID, additionalContext string, feedbackIncorporated bool) (*domain.MemeAnalysis, error) {
	existing, err := s.analysisRepo.GetByID(ctx, memeID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, newPipelineError(CategoryStorageError, "Meme not found", memeID, err)
		}
		return nil, newPipelineError(CategoryStorageError, "Failed to load meme", err.Error(), err)
	}

	outcome, err := s.Perform(ctx, existing.ImageURL, additionalContext)
	if err != nil {
		return nil, err
	}

	existing.Verdict = outcome.Verdict
	existing.Confidence = outcome.Confidence
	existing.Claims = outcome.Claims
	existing.Sources = flattenSources(outcome.Claims)
	existing.OverallExplanation = joinExplanations(outcome.Claims)
	if feedbackIncorporated {
		existing.FeedbackIncorporated = true
	}

	if err := s.analysisRepo.Update(ctx, existing); err != nil {
		return nil, newPipelineError(CategoryStorageError,
			"Failed to update analysis", err.Error(), err)
	}

	s.log(ctx).WithField(logger.FieldMemeID, memeID).Info("Re-analysis complete, existing record updated")

	return existing, nil
}

// BulkAnalyzeEntry is one item of a bulk analysis request. A set MemeID
// means "re-analyze that record"; otherwise a new record is created from
// ImageURL.
type BulkAnalyzeEntry struct {
	ImageURL  string `json:"image_url"`
	MemeID    string `json:"meme_id,omitempty"`
	Title     string `json:"title,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
}

// BulkAnalyze fans the pipeline out over entries with bounded concurrency.
// Per-entry failures are collected in the summary, never fatal.
func (s *AnalysisService) BulkAnalyze(ctx context.Context, entries []BulkAnalyzeEntry, width int) batch.Summary {
	byKey := make(map[string]BulkAnalyzeEntry, len(entries))
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		key := e.MemeID
		if key == "" {
			key = e.ImageURL
		}
		if _, dup := byKey[key]; dup {
			continue
		}
		byKey[key] = e
		keys = append(keys, key)
	}

	return batch.Run(ctx, keys, width, func(ctx context.Context, key string) error {
		entry := byKey[key]
		if entry.MemeID != "" {
			_, err := s.Reanalyze(ctx, entry.MemeID, "", false)
			return err
		}
		if entry.ImageURL == "" {
			return fmt.Errorf("entry has neither meme_id nor image_url")
		}
		sourceURL := entry.SourceURL
		if sourceURL == "" {
			sourceURL = entry.ImageURL
		}
		_, err := s.AnalyzeAndSave(ctx, entry.ImageURL, entry.Title, sourceURL, "")
		return err
	})
}

// GetByID fetches a single record.
func (s *AnalysisService) GetByID(ctx context.Context, id string) (*domain.MemeAnalysis, error) {
	return s.analysisRepo.GetByID(ctx, id)
}

// rawAnalysis mirrors the demanded response shape, tolerating decimal
// confidences and missing sources arrays.
type rawAnalysis struct {
	OverallVerdict string     `json:"overall_verdict"`
	Confidence     *float64   `json:"confidence"`
	Claims         []rawClaim `json:"claims"`
}

type rawClaim struct {
	Text        string      `json:"text"`
	Verdict     string      `json:"verdict"`
	Confidence  *float64    `json:"confidence"`
	Explanation string      `json:"explanation"`
	Sources     []rawSource `json:"sources"`
}

type rawSource struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Publisher string `json:"publisher"`
}

func parseAnalysis(raw json.RawMessage) (*AnalysisOutcome, error) {
	var r rawAnalysis
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}

	verdict, ok := domain.ParseVerdict(r.OverallVerdict)
	if !ok {
		return nil, fmt.Errorf("invalid verdict category %q", r.OverallVerdict)
	}

	confidence := 0
	if r.Confidence != nil {
		confidence = domain.FormatConfidence(*r.Confidence)
		if confidence < 0 || confidence > 100 {
			return nil, fmt.Errorf("confidence %d outside 0-100 range", confidence)
		}
	}

	if len(r.Claims) == 0 {
		return nil, fmt.Errorf("claims list is empty")
	}

	claims := make([]domain.Claim, 0, len(r.Claims))
	for i, rc := range r.Claims {
		claimVerdict, ok := domain.ParseVerdict(rc.Verdict)
		if !ok {
			return nil, fmt.Errorf("claim %d: invalid verdict category %q", i, rc.Verdict)
		}
		if rc.Text == "" {
			return nil, fmt.Errorf("claim %d: missing text", i)
		}
		claimConfidence := 0
		if rc.Confidence != nil {
			claimConfidence = domain.FormatConfidence(*rc.Confidence)
			if claimConfidence < 0 || claimConfidence > 100 {
				return nil, fmt.Errorf("claim %d: confidence %d outside 0-100 range", i, claimConfidence)
			}
		}

		sources := make([]domain.Source, 0, len(rc.Sources))
		for j, rs := range rc.Sources {
			if err := validateSourceURL(rs.URL); err != nil {
				return nil, fmt.Errorf("claim %d source %d: %w", i, j, err)
			}
			sources = append(sources, domain.Source{
				Title:     rs.Title,
				URL:       rs.URL,
				Publisher: rs.Publisher,
			})
		}

		claims = append(claims, domain.Claim{
			Text:        rc.Text,
			Verdict:     claimVerdict,
			Confidence:  claimConfidence,
			Explanation: rc.Explanation,
			Sources:     sources,
		})
	}

	return &AnalysisOutcome{
		Verdict:    verdict,
		Confidence: confidence,
		Claims:     claims,
	}, nil
}

func validateSourceURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("malformed source URL %q", raw)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("source URL %q is not an absolute http(s) URL", raw)
	}
	return nil
}

func joinExplanations(claims []domain.Claim) string {
	parts := make([]string, 0, len(claims))
	for _, c := range claims {
		if c.Explanation != "" {
			parts = append(parts, c.Explanation)
		}
	}
	return strings.Join(parts, " ")
}

func flattenSources(claims []domain.Claim) domain.SourceList {
	var sources domain.SourceList
	for _, c := range claims {
		sources = append(sources, c.Sources...)
	}
	if sources == nil {
		sources = domain.SourceList{}
	}
	return sources
}

func bulletList(items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "• "+item)
	}
	return strings.Join(lines, "\n")
}

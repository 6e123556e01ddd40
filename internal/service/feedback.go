package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/timmy/memebuster/internal/domain"
	"github.com/timmy/memebuster/internal/logger"
	"github.com/timmy/memebuster/internal/prompts"
	"github.com/timmy/memebuster/internal/repository"
)

// FeedbackEvaluation is the LLM's judgment on a piece of user feedback.
type FeedbackEvaluation struct {
	IsValid          bool   `json:"is_valid"`
	AddsValue        bool   `json:"adds_value"`
	ShouldReanalyze  bool   `json:"should_reanalyze"`
	Reasoning        string `json:"reasoning"`
	EvaluationFailed bool   `json:"evaluation_failed,omitempty"`
}

// FeedbackResult is the outcome of a feedback submission.
type FeedbackResult struct {
	Feedback   *domain.Feedback     `json:"feedback"`
	Evaluation *FeedbackEvaluation  `json:"evaluation"`
	Reanalyzed bool                 `json:"reanalyzed"`
	Updated    *domain.MemeAnalysis `json:"updated_analysis,omitempty"`
}

// FeedbackService stores user feedback, asks the eval model whether it merits
// a re-analysis, and triggers one when it does. A failed re-analysis never
// fails the submission itself; the feedback is already stored by then.
type FeedbackService struct {
	vision       *VisionService
	analysis     *AnalysisService
	feedbackRepo *repository.FeedbackRepository
	promptRepo   *repository.PromptRepository
	logger       *logger.Logger
}

// NewFeedbackService creates a new feedback service.
func NewFeedbackService(
	vision *VisionService,
	analysis *AnalysisService,
	feedbackRepo *repository.FeedbackRepository,
	promptRepo *repository.PromptRepository,
	log *logger.Logger,
) *FeedbackService {
	return &FeedbackService{
		vision:       vision,
		analysis:     analysis,
		feedbackRepo: feedbackRepo,
		promptRepo:   promptRepo,
		logger:       log,
	}
}

func (s *FeedbackService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// SubmitInput is a feedback submission.
type SubmitInput struct {
	MemeID            string
	FeedbackType      domain.FeedbackType
	UserContext       string
	CulturalContext   string
	HistoricalContext string
	AdditionalSources string
}

// Submit stores the feedback, evaluates it, and re-analyzes the meme when the
// evaluation (or its fallback) says to.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - in: the feedback fields.
//
// Returns:
//   - *FeedbackResult: stored feedback, evaluation, and any updated analysis.
//   - error: non-nil only when the meme is missing or the insert fails.
func (s *FeedbackService) Submit(ctx context.Context, in SubmitInput) (*FeedbackResult, error) {
	meme, err := s.analysis.GetByID(ctx, in.MemeID)
	if err != nil {
		return nil, newPipelineError(CategoryStorageError, "Meme not found", in.MemeID, err)
	}

	feedback := &domain.Feedback{
		ID:                uuid.New().String(),
		MemeID:            in.MemeID,
		FeedbackType:      in.FeedbackType,
		UserContext:       in.UserContext,
		CulturalContext:   in.CulturalContext,
		HistoricalContext: in.HistoricalContext,
		AdditionalSources: in.AdditionalSources,
		Status:            domain.FeedbackStatusPending,
	}
	if err := s.feedbackRepo.Create(ctx, feedback); err != nil {
		return nil, newPipelineError(CategoryStorageError, "Failed to save feedback", err.Error(), err)
	}

	evaluation := s.evaluate(ctx, meme, feedback)

	result := &FeedbackResult{
		Feedback:   feedback,
		Evaluation: evaluation,
	}

	if !evaluation.ShouldReanalyze {
		return result, nil
	}

	updated, err := s.analysis.Reanalyze(ctx, in.MemeID, feedbackContextBlock(feedback), true)
	if err != nil {
		// The feedback itself is stored; report it as such.
		s.log(ctx).WithError(err).WithField(logger.FieldMemeID, in.MemeID).
			Warn("Re-analysis after feedback failed, feedback kept as pending")
		return result, nil
	}

	if err := s.feedbackRepo.MarkIncorporated(ctx, feedback.ID); err != nil {
		s.log(ctx).WithError(err).Warn("Failed to mark feedback as incorporated")
	} else {
		feedback.Status = domain.FeedbackStatusIncorporated
	}

	result.Reanalyzed = true
	result.Updated = updated
	return result, nil
}

// ListByMemeID returns all feedback for a meme, newest first.
func (s *FeedbackService) ListByMemeID(ctx context.Context, memeID string) ([]domain.Feedback, error) {
	return s.feedbackRepo.ListByMemeID(ctx, memeID)
}

// evaluate asks the eval model whether the feedback warrants re-analysis.
// When the call or its response fails, the fallback is type-driven: an
// explicit "reanalyze" request still triggers one.
func (s *FeedbackService) evaluate(ctx context.Context, meme *domain.MemeAnalysis, feedback *domain.Feedback) *FeedbackEvaluation {
	promptText := prompts.FeedbackEvaluationPrompt
	if s.promptRepo != nil {
		if p, err := s.promptRepo.GetCurrent(ctx, prompts.NameFeedbackEvaluation); err == nil {
			promptText = p.PromptText
		} else {
			s.log(ctx).WithField(logger.FieldPrompt, prompts.NameFeedbackEvaluation).
				Warn("Failed to fetch feedback evaluation prompt from database, using fallback")
		}
	}

	fullPrompt := fmt.Sprintf(`%s

**Current analysis:**
Verdict: %s (confidence %d)
Explanation: %s

**User feedback (type: %s):**
%s%s`, promptText, meme.Verdict, meme.Confidence, meme.OverallExplanation,
		feedback.FeedbackType, feedback.UserContext, extraContextSection(feedback)) +
		prompts.FeedbackEvaluationFormatInstructions

	responseText, err := s.vision.CompleteText(ctx, fullPrompt, CallOptions{
		MaxTokens:   500,
		Temperature: 0.3,
	})
	if err != nil {
		return s.fallbackEvaluation(ctx, feedback, err)
	}

	raw, err := ExtractJSON(responseText)
	if err != nil {
		return s.fallbackEvaluation(ctx, feedback, err)
	}

	var evaluation FeedbackEvaluation
	if err := json.Unmarshal(raw, &evaluation); err != nil {
		return s.fallbackEvaluation(ctx, feedback, err)
	}

	return &evaluation
}

func (s *FeedbackService) fallbackEvaluation(ctx context.Context, feedback *domain.Feedback, err error) *FeedbackEvaluation {
	s.log(ctx).WithError(err).Warn("Feedback evaluation failed, applying type-based fallback")
	return &FeedbackEvaluation{
		IsValid:          true,
		AddsValue:        false,
		ShouldReanalyze:  feedback.FeedbackType == domain.FeedbackTypeReanalyze,
		Reasoning:        "Automatic evaluation unavailable; fell back to the requested feedback type.",
		EvaluationFailed: true,
	}
}

func extraContextSection(feedback *domain.Feedback) string {
	var b strings.Builder
	if feedback.CulturalContext != "" {
		b.WriteString("\nCultural context: " + feedback.CulturalContext)
	}
	if feedback.HistoricalContext != "" {
		b.WriteString("\nHistorical context: " + feedback.HistoricalContext)
	}
	if feedback.AdditionalSources != "" {
		b.WriteString("\nAdditional sources: " + feedback.AdditionalSources)
	}
	return b.String()
}

// feedbackContextBlock renders the feedback as the human-context block fed
// into the re-analysis prompt.
func feedbackContextBlock(feedback *domain.Feedback) string {
	var b strings.Builder
	b.WriteString(string(feedback.FeedbackType) + ": " + feedback.UserContext)
	b.WriteString(extraContextSection(feedback))
	return b.String()
}

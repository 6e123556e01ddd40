package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/timmy/memebuster/internal/domain"
	"github.com/timmy/memebuster/internal/logger"
	"github.com/timmy/memebuster/internal/prompts"
	"github.com/timmy/memebuster/internal/repository"
)

// RecognitionThreshold is the fixed policy cutoff: recognition confidence
// strictly below it means "not a meme" and the pipeline stops before the
// claim-analysis call is ever issued.
const RecognitionThreshold = 50

// MemeCharacteristics are the structured sub-signals from the recognition gate.
type MemeCharacteristics struct {
	HasTextOverlay          bool `json:"has_text_overlay"`
	HasRecognizableTemplate bool `json:"has_recognizable_template"`
	HasHumorousIntent       bool `json:"has_humorous_intent"`
	HasViralPatterns        bool `json:"has_viral_patterns"`
	HasCulturalContext      bool `json:"has_cultural_context"`
}

// RecognitionResult is the schema-validated output of the recognition gate.
type RecognitionResult struct {
	IsMeme           bool                `json:"is_meme"`
	Confidence       int                 `json:"confidence"`
	Reasoning        string              `json:"reasoning"`
	Characteristics  MemeCharacteristics `json:"characteristics"`
	RejectionReasons []string            `json:"rejection_reasons"`
}

// rawRecognition mirrors RecognitionResult but tolerates decimal confidences,
// which get normalized during validation.
type rawRecognition struct {
	IsMeme           *bool               `json:"is_meme"`
	Confidence       *float64            `json:"confidence"`
	Reasoning        string              `json:"reasoning"`
	Characteristics  MemeCharacteristics `json:"characteristics"`
	RejectionReasons []string            `json:"rejection_reasons"`
}

// RecognitionService runs the cheap pre-check deciding whether an image is a
// meme before the more expensive claim analysis is attempted.
type RecognitionService struct {
	vision     *VisionService
	promptRepo *repository.PromptRepository
	logger     *logger.Logger
}

// NewRecognitionService creates a new recognition gate.
func NewRecognitionService(vision *VisionService, promptRepo *repository.PromptRepository, log *logger.Logger) *RecognitionService {
	return &RecognitionService{
		vision:     vision,
		promptRepo: promptRepo,
		logger:     log,
	}
}

func (s *RecognitionService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// Recognize classifies whether the image is a meme.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - imageData: data URL or https URL of the image.
//
// Returns:
//   - *RecognitionResult: validated recognition output.
//   - error: *PipelineError; schema-validation failure is a hard error.
func (s *RecognitionService) Recognize(ctx context.Context, imageData string) (*RecognitionResult, error) {
	promptText := prompts.RecognitionPrompt
	if s.promptRepo != nil {
		if p, err := s.promptRepo.GetCurrent(ctx, prompts.NameMemeRecognition); err == nil {
			promptText = p.PromptText
		} else {
			s.log(ctx).WithField(logger.FieldPrompt, prompts.NameMemeRecognition).
				Warn("Failed to fetch recognition prompt from database, using fallback")
		}
	}

	responseText, err := s.vision.CompleteVision(ctx, promptText+prompts.RecognitionFormatInstructions, imageData, CallOptions{
		MaxTokens:   1500,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, err
	}

	raw, err := ExtractJSON(responseText)
	if err != nil {
		return nil, newPipelineError(CategoryInvalidResponse,
			"AI recognition response is not valid JSON", err.Error(), err)
	}

	result, err := parseRecognition(raw)
	if err != nil {
		return nil, newPipelineError(CategoryInvalidResponse,
			"AI recognition response validation failed", err.Error(), err)
	}

	s.log(ctx).WithFields(logger.Fields{
		"is_meme":    result.IsMeme,
		"confidence": result.Confidence,
	}).Info("Meme recognition complete")

	return result, nil
}

func parseRecognition(raw json.RawMessage) (*RecognitionResult, error) {
	var r rawRecognition
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	if r.IsMeme == nil {
		return nil, fmt.Errorf("missing required field is_meme")
	}
	if r.Confidence == nil {
		return nil, fmt.Errorf("missing required field confidence")
	}

	confidence := domain.FormatConfidence(*r.Confidence)
	if confidence < 0 || confidence > 100 {
		return nil, fmt.Errorf("confidence %d outside 0-100 range", confidence)
	}
	if r.Reasoning == "" {
		return nil, fmt.Errorf("missing required field reasoning")
	}

	reasons := r.RejectionReasons
	if reasons == nil {
		reasons = []string{}
	}

	return &RecognitionResult{
		IsMeme:           *r.IsMeme,
		Confidence:       confidence,
		Reasoning:        r.Reasoning,
		Characteristics:  r.Characteristics,
		RejectionReasons: reasons,
	}, nil
}

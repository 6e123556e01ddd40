package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/memebuster/internal/domain"
	"github.com/timmy/memebuster/internal/logger"
	"github.com/timmy/memebuster/internal/repository"
	"gorm.io/gorm"
)

func seedMeme(t *testing.T, repo *repository.AnalysisRepository) *domain.MemeAnalysis {
	t.Helper()
	record := &domain.MemeAnalysis{
		ID:                 uuid.New().String(),
		ImageURL:           "https://example.com/seeded.png",
		Title:              "seeded meme",
		Verdict:            domain.VerdictMisleading,
		Confidence:         70,
		OverallExplanation: "seeded explanation",
		Claims:             domain.ClaimList{{Text: "x", Verdict: domain.VerdictMisleading, Confidence: 70}},
		AnalyzedAt:         time.Now(),
	}
	if err := repo.Create(context.Background(), record); err != nil {
		t.Fatalf("failed to seed meme: %v", err)
	}
	return record
}

func newTestFeedback(t *testing.T, llm *mockLLM, db *gorm.DB) (*FeedbackService, *repository.AnalysisRepository, *repository.FeedbackRepository) {
	t.Helper()
	analysisRepo := repository.NewAnalysisRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	promptRepo := repository.NewPromptRepository(db)
	log := logger.New(&logger.Config{Level: "error", Format: "text"})

	vision := newTestVision(llm.server.URL)
	recognition := NewRecognitionService(vision, promptRepo, log)
	analysis := NewAnalysisService(vision, recognition, analysisRepo, promptRepo, log)
	feedback := NewFeedbackService(vision, analysis, feedbackRepo, promptRepo, log)
	return feedback, analysisRepo, feedbackRepo
}

func TestFeedbackEvalFallback(t *testing.T) {
	testCases := []struct {
		name          string
		feedbackType  domain.FeedbackType
		wantReanalyze bool
	}{
		{name: "clarify falls back to no re-analysis", feedbackType: domain.FeedbackTypeClarify, wantReanalyze: false},
		{name: "dispute falls back to no re-analysis", feedbackType: domain.FeedbackTypeDispute, wantReanalyze: false},
		{name: "explicit reanalyze request survives eval failure", feedbackType: domain.FeedbackTypeReanalyze, wantReanalyze: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Empty queue: every LLM call fails with 500.
			llm := newMockLLM(t)
			db := newTestDB(t)
			feedback, analysisRepo, feedbackRepo := newTestFeedback(t, llm, db)
			meme := seedMeme(t, analysisRepo)

			result, err := feedback.Submit(context.Background(), SubmitInput{
				MemeID:       meme.ID,
				FeedbackType: tc.feedbackType,
				UserContext:  "this is wrong",
			})
			if err != nil {
				t.Fatalf("submission must not fail when evaluation fails: %v", err)
			}

			if !result.Evaluation.EvaluationFailed {
				t.Error("evaluation should be marked as failed")
			}
			if result.Evaluation.ShouldReanalyze != tc.wantReanalyze {
				t.Errorf("ShouldReanalyze = %v, want %v", result.Evaluation.ShouldReanalyze, tc.wantReanalyze)
			}
			// Re-analysis itself also fails against the dead LLM; the
			// submission still succeeds with the feedback stored.
			if result.Reanalyzed {
				t.Error("Reanalyzed should be false when the pipeline is down")
			}

			stored, err := feedbackRepo.ListByMemeID(context.Background(), meme.ID)
			if err != nil {
				t.Fatal(err)
			}
			if len(stored) != 1 {
				t.Fatalf("stored feedback count = %d, want 1", len(stored))
			}
			if stored[0].Status != domain.FeedbackStatusPending {
				t.Errorf("status = %s, want pending", stored[0].Status)
			}
		})
	}
}

func TestFeedbackTriggersReanalysis(t *testing.T) {
	llm := newMockLLM(t,
		`{"is_valid": true, "adds_value": true, "should_reanalyze": true, "reasoning": "adds context"}`,
		recognitionReply(88, true),
		analysisReply("satire", 85),
	)
	db := newTestDB(t)
	feedback, analysisRepo, feedbackRepo := newTestFeedback(t, llm, db)
	meme := seedMeme(t, analysisRepo)

	result, err := feedback.Submit(context.Background(), SubmitInput{
		MemeID:          meme.ID,
		FeedbackType:    domain.FeedbackTypeDispute,
		UserContext:     "this is actually satire",
		CulturalContext: "references a known joke format",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Reanalyzed {
		t.Fatal("expected re-analysis to run")
	}
	if result.Updated == nil || result.Updated.Verdict != domain.VerdictSatire {
		t.Errorf("updated verdict = %+v, want SATIRE", result.Updated)
	}
	if !result.Updated.FeedbackIncorporated {
		t.Error("updated record should be marked feedback_incorporated")
	}

	count, err := analysisRepo.CountAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("row count = %d after feedback re-analysis, want 1", count)
	}

	stored, err := feedbackRepo.ListByMemeID(context.Background(), meme.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].Status != domain.FeedbackStatusIncorporated {
		t.Errorf("feedback status = %+v, want incorporated", stored)
	}
}

func TestFeedbackUnknownMeme(t *testing.T) {
	llm := newMockLLM(t)
	db := newTestDB(t)
	feedback, _, _ := newTestFeedback(t, llm, db)

	_, err := feedback.Submit(context.Background(), SubmitInput{
		MemeID:       "does-not-exist",
		FeedbackType: domain.FeedbackTypeClarify,
		UserContext:  "hello",
	})
	if CategoryOf(err) != CategoryStorageError {
		t.Errorf("category = %s, want %s", CategoryOf(err), CategoryStorageError)
	}
}

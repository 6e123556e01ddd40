package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/timmy/memebuster/internal/config"
	"github.com/timmy/memebuster/internal/domain"
	"github.com/timmy/memebuster/internal/logger"
	"github.com/timmy/memebuster/internal/repository"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		AutoMigrate:  true,
	})
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	return db
}

// mockLLM serves queued response bodies in order, wrapped in the chat
// completion envelope. Extra requests get a 500.
type mockLLM struct {
	server   *httptest.Server
	requests int32
	queue    chan string
}

func newMockLLM(t *testing.T, responses ...string) *mockLLM {
	t.Helper()
	m := &mockLLM{queue: make(chan string, len(responses))}
	for _, r := range responses {
		m.queue <- r
	}
	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.requests, 1)
		select {
		case content := <-m.queue:
			body := map[string]interface{}{
				"choices": []map[string]interface{}{
					{"message": map[string]string{"content": content}},
				},
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(body)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(m.server.Close)
	return m
}

func (m *mockLLM) requestCount() int {
	return int(atomic.LoadInt32(&m.requests))
}

func newTestVision(baseURL string) *VisionService {
	return NewVisionService(&VisionConfig{
		Model:     "test-vision",
		EvalModel: "test-text",
		APIKey:    "test-key",
		BaseURL:   baseURL,
		Timeout:   5 * time.Second,
	})
}

func newTestPipeline(t *testing.T, llm *mockLLM) (*AnalysisService, *repository.AnalysisRepository) {
	t.Helper()
	db := newTestDB(t)
	analysisRepo := repository.NewAnalysisRepository(db)
	promptRepo := repository.NewPromptRepository(db)
	log := logger.New(&logger.Config{Level: "error", Format: "text"})

	vision := newTestVision(llm.server.URL)
	recognition := NewRecognitionService(vision, promptRepo, log)
	return NewAnalysisService(vision, recognition, analysisRepo, promptRepo, log), analysisRepo
}

func recognitionReply(confidence int, isMeme bool, reasons ...string) string {
	reasonsJSON, _ := json.Marshal(reasons)
	return fmt.Sprintf(`{
		"is_meme": %v,
		"confidence": %d,
		"reasoning": "test reasoning",
		"characteristics": {"has_text_overlay": true},
		"rejection_reasons": %s
	}`, isMeme, confidence, reasonsJSON)
}

func analysisReply(verdict string, confidence float64) string {
	return fmt.Sprintf(`{
		"overall_verdict": %q,
		"confidence": %v,
		"claims": [
			{
				"text": "the claim",
				"verdict": %q,
				"confidence": %v,
				"explanation": "because",
				"sources": [{"title": "Snopes", "url": "https://snopes.com/x", "publisher": "Snopes"}]
			}
		]
	}`, verdict, confidence, verdict, confidence)
}

func TestPipelineRejectsNonMeme(t *testing.T) {
	llm := newMockLLM(t, recognitionReply(30, false, "No text overlay detected"))
	analysis, repo := newTestPipeline(t, llm)

	_, err := analysis.AnalyzeAndSave(context.Background(), "https://example.com/photo.jpg", "t", "", "")
	if err == nil {
		t.Fatal("expected rejection for low recognition confidence")
	}

	var pe *PipelineError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PipelineError, got %T", err)
	}
	if pe.Category != CategoryNotAMeme {
		t.Errorf("category = %s, want %s", pe.Category, CategoryNotAMeme)
	}
	if pe.Details == "" {
		t.Error("rejection details should carry the reasons")
	}

	// The analysis call must never have been issued.
	if llm.requestCount() != 1 {
		t.Errorf("LLM requests = %d, want 1 (recognition only)", llm.requestCount())
	}

	count, err := repo.CountAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("stored %d records for a rejected image, want 0", count)
	}
}

func TestPipelineBoundaryConfidencePasses(t *testing.T) {
	// Exactly 50 is not "below threshold" and must proceed to analysis.
	llm := newMockLLM(t,
		recognitionReply(50, true),
		analysisReply("unverifiable", 60),
	)
	analysis, _ := newTestPipeline(t, llm)

	result, err := analysis.AnalyzeAndSave(context.Background(), "https://example.com/borderline.png", "t", "", "")
	if err != nil {
		t.Fatalf("unexpected error at boundary confidence: %v", err)
	}
	if result.Verdict != domain.VerdictUnverifiable {
		t.Errorf("verdict = %s, want %s", result.Verdict, domain.VerdictUnverifiable)
	}
}

func TestPipelinePersistsAnalysis(t *testing.T) {
	llm := newMockLLM(t,
		recognitionReply(85, true),
		analysisReply("satire", 0.9),
	)
	analysis, repo := newTestPipeline(t, llm)

	result, err := analysis.AnalyzeAndSave(context.Background(), "https://example.com/meme.png", "test meme", "https://example.com", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Verdict != domain.VerdictSatire {
		t.Errorf("verdict = %q, want upper-case %q", result.Verdict, domain.VerdictSatire)
	}
	if result.Confidence != 90 {
		t.Errorf("confidence = %d, want 90 (0.9 normalized)", result.Confidence)
	}
	if len(result.Claims) < 1 {
		t.Fatal("expected at least one claim")
	}
	if result.Claims[0].Confidence != 90 {
		t.Errorf("claim confidence = %d, want 90", result.Claims[0].Confidence)
	}
	if result.OverallExplanation == "" {
		t.Error("overall explanation should be joined from claims")
	}
	if len(result.Sources) != 1 {
		t.Errorf("flattened sources = %d, want 1", len(result.Sources))
	}

	stored, err := repo.GetByID(context.Background(), result.ID)
	if err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
	if stored.Verdict != domain.VerdictSatire {
		t.Errorf("stored verdict = %q, want %q", stored.Verdict, domain.VerdictSatire)
	}
}

func TestReanalyzeUpdatesInPlace(t *testing.T) {
	llm := newMockLLM(t,
		recognitionReply(85, true),
		analysisReply("misleading", 70),
		recognitionReply(90, true),
		analysisReply("factual", 95),
	)
	analysis, repo := newTestPipeline(t, llm)

	first, err := analysis.AnalyzeAndSave(context.Background(), "https://example.com/meme.png", "t", "", "")
	if err != nil {
		t.Fatalf("initial analysis failed: %v", err)
	}

	updated, err := analysis.Reanalyze(context.Background(), first.ID, "", false)
	if err != nil {
		t.Fatalf("re-analysis failed: %v", err)
	}

	if updated.ID != first.ID {
		t.Errorf("re-analysis changed the record ID: %s -> %s", first.ID, updated.ID)
	}
	if updated.Verdict != domain.VerdictFactual {
		t.Errorf("verdict = %q, want %q", updated.Verdict, domain.VerdictFactual)
	}

	count, err := repo.CountAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("row count = %d after re-analysis, want 1", count)
	}
}

func TestPipelineRejectsUnknownVerdict(t *testing.T) {
	llm := newMockLLM(t,
		recognitionReply(85, true),
		analysisReply("spicy", 80),
	)
	analysis, _ := newTestPipeline(t, llm)

	_, err := analysis.AnalyzeAndSave(context.Background(), "https://example.com/meme.png", "t", "", "")
	if CategoryOf(err) != CategoryInvalidResponse {
		t.Errorf("category = %s, want %s", CategoryOf(err), CategoryInvalidResponse)
	}
}

func TestPipelineRejectsEmptyClaims(t *testing.T) {
	llm := newMockLLM(t,
		recognitionReply(85, true),
		`{"overall_verdict": "humor", "confidence": 80, "claims": []}`,
	)
	analysis, _ := newTestPipeline(t, llm)

	_, err := analysis.AnalyzeAndSave(context.Background(), "https://example.com/meme.png", "t", "", "")
	if CategoryOf(err) != CategoryInvalidResponse {
		t.Errorf("category = %s, want %s", CategoryOf(err), CategoryInvalidResponse)
	}
}

func TestPipelineRejectsRelativeSourceURL(t *testing.T) {
	llm := newMockLLM(t,
		recognitionReply(85, true),
		`{"overall_verdict": "factual", "confidence": 80, "claims": [
			{"text": "x", "verdict": "factual", "confidence": 80, "explanation": "e",
			 "sources": [{"title": "s", "url": "/relative/path", "publisher": "p"}]}
		]}`,
	)
	analysis, _ := newTestPipeline(t, llm)

	_, err := analysis.AnalyzeAndSave(context.Background(), "https://example.com/meme.png", "t", "", "")
	if CategoryOf(err) != CategoryInvalidResponse {
		t.Errorf("category = %s, want %s", CategoryOf(err), CategoryInvalidResponse)
	}
}

func TestVisionMissingAPIKey(t *testing.T) {
	vision := NewVisionService(&VisionConfig{Model: "m"})
	_, err := vision.CompleteVision(context.Background(), "prompt", "https://example.com/i.png", CallOptions{MaxTokens: 10})
	if CategoryOf(err) != CategoryServiceNotConfigured {
		t.Errorf("category = %s, want %s", CategoryOf(err), CategoryServiceNotConfigured)
	}
}

func TestVisionRateLimitMapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	vision := newTestVision(server.URL)
	_, err := vision.CompleteVision(context.Background(), "prompt", "https://example.com/i.png", CallOptions{MaxTokens: 10})
	if CategoryOf(err) != CategoryRateLimited {
		t.Errorf("category = %s, want %s", CategoryOf(err), CategoryRateLimited)
	}
}

func TestVisionAuthFailureMapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	vision := newTestVision(server.URL)
	_, err := vision.CompleteText(context.Background(), "prompt", CallOptions{MaxTokens: 10})
	if CategoryOf(err) != CategoryServiceNotConfigured {
		t.Errorf("category = %s, want %s", CategoryOf(err), CategoryServiceNotConfigured)
	}
}

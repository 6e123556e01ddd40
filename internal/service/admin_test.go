package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/memebuster/internal/domain"
	"github.com/timmy/memebuster/internal/logger"
	"github.com/timmy/memebuster/internal/repository"
)

func newTestAdmin(t *testing.T) (*AdminService, *repository.AnalysisRepository) {
	t.Helper()
	db := newTestDB(t)
	analysisRepo := repository.NewAnalysisRepository(db)
	log := logger.New(&logger.Config{Level: "error", Format: "text"})
	admin := NewAdminService(nil, analysisRepo, 5, log)
	return admin, analysisRepo
}

func seedRecord(t *testing.T, repo *repository.AnalysisRepository, imageURL string, age time.Duration) string {
	t.Helper()
	record := &domain.MemeAnalysis{
		ID:         uuid.New().String(),
		ImageURL:   imageURL,
		Verdict:    domain.VerdictHumor,
		Confidence: 50,
		AnalyzedAt: time.Now().Add(-age),
	}
	if err := repo.Create(context.Background(), record); err != nil {
		t.Fatal(err)
	}
	return record.ID
}

func TestFindDuplicates(t *testing.T) {
	admin, repo := newTestAdmin(t)
	ctx := context.Background()

	oldest := seedRecord(t, repo, "https://i.redd.it/same.jpg", 2*time.Hour)
	seedRecord(t, repo, "https://i.redd.it/same.jpg", time.Hour)
	seedRecord(t, repo, "https://i.redd.it/unique.jpg", 0)

	groups, err := admin.FindDuplicates(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 1 {
		t.Fatalf("found %d groups, want 1", len(groups))
	}
	if len(groups[0].IDs) != 2 {
		t.Errorf("group size = %d, want 2", len(groups[0].IDs))
	}
	if groups[0].Keep != oldest {
		t.Errorf("keeper = %s, want the oldest record %s", groups[0].Keep, oldest)
	}
}

func TestResolveDuplicates(t *testing.T) {
	admin, repo := newTestAdmin(t)
	ctx := context.Background()

	oldest := seedRecord(t, repo, "https://i.redd.it/same.jpg", 2*time.Hour)
	seedRecord(t, repo, "https://i.redd.it/same.jpg", time.Hour)
	seedRecord(t, repo, "https://i.redd.it/same.jpg", time.Minute)
	unique := seedRecord(t, repo, "https://i.redd.it/unique.jpg", 0)

	groups, err := admin.ResolveDuplicates(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 1 || groups[0].Removed != 2 {
		t.Fatalf("resolution = %+v, want one group with 2 removed", groups)
	}

	count, err := repo.CountAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("row count = %d after resolution, want 2", count)
	}

	if _, err := repo.GetByID(ctx, oldest); err != nil {
		t.Errorf("keeper was deleted: %v", err)
	}
	if _, err := repo.GetByID(ctx, unique); err != nil {
		t.Errorf("unique record was deleted: %v", err)
	}
}

func TestBulkDeleteSelectedIDs(t *testing.T) {
	admin, repo := newTestAdmin(t)
	ctx := context.Background()

	a := seedRecord(t, repo, "https://i.redd.it/a.jpg", 0)
	b := seedRecord(t, repo, "https://i.redd.it/b.jpg", 0)
	seedRecord(t, repo, "https://i.redd.it/c.jpg", 0)

	summary, err := admin.BulkDelete(ctx, []string{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Total != 2 || summary.Succeeded != 2 {
		t.Errorf("summary = %+v, want 2/2", summary)
	}

	count, _ := repo.CountAll(ctx)
	if count != 1 {
		t.Errorf("row count = %d, want 1", count)
	}
}

func TestBulkDeleteAll(t *testing.T) {
	admin, repo := newTestAdmin(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		seedRecord(t, repo, "https://i.redd.it/"+uuid.New().String()+".jpg", 0)
	}

	summary, err := admin.BulkDelete(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Total != 7 || summary.Succeeded != 7 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want 7 succeeded", summary)
	}

	count, _ := repo.CountAll(ctx)
	if count != 0 {
		t.Errorf("row count = %d, want 0", count)
	}
}

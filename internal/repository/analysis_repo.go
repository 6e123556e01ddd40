package repository

import (
	"context"
	"time"

	"github.com/timmy/memebuster/internal/domain"
	"gorm.io/gorm"
)

// AnalysisRepository handles meme analysis data operations.
type AnalysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository creates a new AnalysisRepository.
// Parameters:
//   - db: GORM database handle used for queries.
//
// Returns:
//   - *AnalysisRepository: repository instance bound to db.
func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Create inserts a new analysis record.
func (r *AnalysisRepository) Create(ctx context.Context, analysis *domain.MemeAnalysis) error {
	return r.db.WithContext(ctx).Create(analysis).Error
}

// Update overwrites the verdict fields of an existing record by ID. It never
// inserts; re-analysis must not create a second row for the same meme.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - analysis: record carrying the ID and the new verdict fields.
//
// Returns:
//   - error: non-nil if the update fails or the record does not exist.
func (r *AnalysisRepository) Update(ctx context.Context, analysis *domain.MemeAnalysis) error {
	result := r.db.WithContext(ctx).Model(&domain.MemeAnalysis{}).
		Where("id = ?", analysis.ID).
		Updates(map[string]interface{}{
			"verdict":               analysis.Verdict,
			"confidence":            analysis.Confidence,
			"overall_explanation":   analysis.OverallExplanation,
			"claims":                analysis.Claims,
			"sources":               analysis.Sources,
			"feedback_incorporated": analysis.FeedbackIncorporated,
			"updated_at":            time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetByID retrieves an analysis by its ID.
func (r *AnalysisRepository) GetByID(ctx context.Context, id string) (*domain.MemeAnalysis, error) {
	var analysis domain.MemeAnalysis
	if err := r.db.WithContext(ctx).First(&analysis, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &analysis, nil
}

// List retrieves analyses with pagination and an optional exact verdict filter.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - verdict: verdict filter or empty for all.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
//
// Returns:
//   - []domain.MemeAnalysis: matching records, newest first.
//   - int64: total count for the filter.
//   - error: non-nil if the query fails.
func (r *AnalysisRepository) List(ctx context.Context, verdict string, limit, offset int) ([]domain.MemeAnalysis, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.MemeAnalysis{})
	if verdict != "" {
		query = query.Where("verdict = ?", verdict)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var analyses []domain.MemeAnalysis
	if err := query.Order("analyzed_at DESC").Limit(limit).Offset(offset).Find(&analyses).Error; err != nil {
		return nil, 0, err
	}
	return analyses, total, nil
}

// Delete removes an analysis record by ID.
func (r *AnalysisRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&domain.MemeAnalysis{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListImageURLs returns every stored image URL, used to build the duplicate
// index during Reddit import.
func (r *AnalysisRepository) ListImageURLs(ctx context.Context) ([]string, error) {
	var urls []string
	if err := r.db.WithContext(ctx).Model(&domain.MemeAnalysis{}).
		Pluck("image_url", &urls).Error; err != nil {
		return nil, err
	}
	return urls, nil
}

// ListIDs returns every record ID, oldest first. Bulk admin operations fan
// out over this list.
func (r *AnalysisRepository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&domain.MemeAnalysis{}).
		Order("analyzed_at ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ImageRef pairs a record ID with its stored image URL, for duplicate scans.
type ImageRef struct {
	ID         string
	ImageURL   string
	AnalyzedAt time.Time
}

// ListImageRefs returns ID/URL pairs for every record, oldest first.
func (r *AnalysisRepository) ListImageRefs(ctx context.Context) ([]ImageRef, error) {
	var refs []ImageRef
	if err := r.db.WithContext(ctx).Model(&domain.MemeAnalysis{}).
		Select("id", "image_url", "analyzed_at").
		Order("analyzed_at ASC").
		Scan(&refs).Error; err != nil {
		return nil, err
	}
	return refs, nil
}

// ExistsByImageURL checks whether a record with the exact image URL exists.
func (r *AnalysisRepository) ExistsByImageURL(ctx context.Context, imageURL string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.MemeAnalysis{}).
		Where("image_url = ?", imageURL).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountAll returns the total number of analysis records.
func (r *AnalysisRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.MemeAnalysis{}).Count(&count).Error
	return count, err
}

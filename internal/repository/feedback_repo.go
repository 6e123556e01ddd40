package repository

import (
	"context"

	"github.com/timmy/memebuster/internal/domain"
	"gorm.io/gorm"
)

// FeedbackRepository handles user feedback data operations.
type FeedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository creates a new FeedbackRepository.
func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create inserts a new feedback record.
func (r *FeedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

// ListByMemeID retrieves all feedback for a meme, newest first.
func (r *FeedbackRepository) ListByMemeID(ctx context.Context, memeID string) ([]domain.Feedback, error) {
	var feedback []domain.Feedback
	if err := r.db.WithContext(ctx).
		Where("meme_id = ?", memeID).
		Order("created_at DESC").
		Find(&feedback).Error; err != nil {
		return nil, err
	}
	return feedback, nil
}

// MarkIncorporated flags a feedback record as folded into a re-analysis.
func (r *FeedbackRepository) MarkIncorporated(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&domain.Feedback{}).
		Where("id = ?", id).
		Update("status", domain.FeedbackStatusIncorporated).Error
}

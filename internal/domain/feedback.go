package domain

import "time"

// FeedbackType tags what the submitter wants done with their feedback.
type FeedbackType string

const (
	FeedbackTypeClarify   FeedbackType = "clarify"
	FeedbackTypeDispute   FeedbackType = "dispute"
	FeedbackTypeReanalyze FeedbackType = "reanalyze"
)

// FeedbackStatus tracks whether feedback has been folded into a re-analysis.
type FeedbackStatus string

const (
	FeedbackStatusPending      FeedbackStatus = "pending"
	FeedbackStatusIncorporated FeedbackStatus = "incorporated"
)

// Feedback is free-text user context tied to an existing analysis. A second
// LLM call decides whether it warrants re-analyzing the meme.
type Feedback struct {
	ID                string         `gorm:"type:text;primaryKey" json:"id"`
	MemeID            string         `gorm:"type:text;not null;index:idx_meme_feedback_meme" json:"meme_id"`
	FeedbackType      FeedbackType   `gorm:"type:text;not null" json:"feedback_type"`
	UserContext       string         `gorm:"type:text;not null" json:"user_context"`
	CulturalContext   string         `gorm:"type:text" json:"cultural_context,omitempty"`
	HistoricalContext string         `gorm:"type:text" json:"historical_context,omitempty"`
	AdditionalSources string         `gorm:"type:text" json:"additional_sources,omitempty"`
	Status            FeedbackStatus `gorm:"type:text;default:pending" json:"status"`
	CreatedAt         time.Time      `json:"created_at"`
}

// TableName returns the database table name for Feedback.
func (Feedback) TableName() string {
	return "meme_feedback"
}

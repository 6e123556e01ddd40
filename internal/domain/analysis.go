package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Source is a single reference supporting or refuting a claim.
type Source struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Publisher string `json:"publisher"`
}

// Claim is one factual assertion extracted from a meme, independently
// verdicted and sourced. Confidence is a percentage in [0,100].
type Claim struct {
	Text        string   `json:"text"`
	Verdict     Verdict  `json:"verdict"`
	Confidence  int      `json:"confidence"`
	Explanation string   `json:"explanation"`
	Sources     []Source `json:"sources"`
}

// ClaimList is a custom type for storing claim arrays as JSON in the database.
type ClaimList []Claim

// Value implements the driver.Valuer interface for database serialization.
func (l ClaimList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (l *ClaimList) Scan(value interface{}) error {
	if value == nil {
		*l = ClaimList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan ClaimList")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, l)
}

// SourceList is a custom type for storing source arrays as JSON in the database.
type SourceList []Source

// Value implements the driver.Valuer interface for database serialization.
func (l SourceList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (l *SourceList) Scan(value interface{}) error {
	if value == nil {
		*l = SourceList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan SourceList")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, l)
}

// MemeAnalysis is one analyzed (or imported, pending analysis) meme.
// Re-analysis updates the row in place; the same meme never gets a second row.
type MemeAnalysis struct {
	ID                   string     `gorm:"type:text;primaryKey" json:"id"`
	ImageURL             string     `gorm:"type:text;not null;index:idx_meme_analyses_image_url" json:"image_url"`
	Title                string     `gorm:"type:text" json:"title,omitempty"`
	SourceURL            string     `gorm:"type:text" json:"source_url,omitempty"`
	Verdict              Verdict    `gorm:"type:text;not null;index:idx_meme_analyses_verdict" json:"verdict"`
	Confidence           int        `json:"confidence"`
	OverallExplanation   string     `gorm:"type:text" json:"overall_explanation"`
	Claims               ClaimList  `gorm:"type:text" json:"claims"`
	Sources              SourceList `gorm:"type:text" json:"sources"`
	FeedbackIncorporated bool       `gorm:"default:false" json:"feedback_incorporated"`
	AnalyzedAt           time.Time  `gorm:"autoCreateTime" json:"analyzed_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// TableName returns the database table name for MemeAnalysis.
func (MemeAnalysis) TableName() string {
	return "meme_analyses"
}

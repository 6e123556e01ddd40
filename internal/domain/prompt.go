package domain

import "time"

// Prompt is one version of a named LLM prompt. Exactly one version per name
// carries is_current; version numbers increase monotonically per name.
type Prompt struct {
	ID              string    `gorm:"type:text;primaryKey" json:"id"`
	Name            string    `gorm:"type:text;not null;index:idx_prompts_name" json:"name"`
	VersionName     string    `gorm:"type:text" json:"version_name"`
	VersionNumber   int       `gorm:"not null;default:1" json:"version_number"`
	Description     string    `gorm:"type:text" json:"description"`
	PromptText      string    `gorm:"type:text;not null" json:"prompt_text"`
	ParentVersionID string    `gorm:"type:text" json:"parent_version_id,omitempty"`
	IsActive        bool      `gorm:"default:true" json:"is_active"`
	IsCurrent       bool      `gorm:"default:false;index:idx_prompts_current" json:"is_current"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName returns the database table name for Prompt.
func (Prompt) TableName() string {
	return "prompts"
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/memebuster/internal/domain"
	"gorm.io/gorm"
)

// PromptRepository handles versioned prompt storage.
type PromptRepository struct {
	db *gorm.DB
}

// NewPromptRepository creates a new PromptRepository.
func NewPromptRepository(db *gorm.DB) *PromptRepository {
	return &PromptRepository{db: db}
}

// GetCurrent retrieves the current active version of a named prompt.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - name: logical prompt name (e.g. "meme_analysis").
//
// Returns:
//   - *domain.Prompt: current prompt version if found.
//   - error: gorm.ErrRecordNotFound when no current version exists.
func (r *PromptRepository) GetCurrent(ctx context.Context, name string) (*domain.Prompt, error) {
	var prompt domain.Prompt
	if err := r.db.WithContext(ctx).
		Where("name = ? AND is_current = ? AND is_active = ?", name, true, true).
		First(&prompt).Error; err != nil {
		return nil, err
	}
	return &prompt, nil
}

// List retrieves all prompt versions, newest first.
func (r *PromptRepository) List(ctx context.Context) ([]domain.Prompt, error) {
	var prompts []domain.Prompt
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&prompts).Error; err != nil {
		return nil, err
	}
	return prompts, nil
}

// Update edits a prompt version in place without bumping the version number.
func (r *PromptRepository) Update(ctx context.Context, id, promptText, description, versionName string) (*domain.Prompt, error) {
	result := r.db.WithContext(ctx).Model(&domain.Prompt{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"prompt_text":  promptText,
			"description":  description,
			"version_name": versionName,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var prompt domain.Prompt
	if err := r.db.WithContext(ctx).First(&prompt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &prompt, nil
}

// CreateVersion inserts a new version of a named prompt. The version number
// is one past the current maximum for the name, and the new version becomes
// the single current one. Runs in a transaction so two concurrent version
// creates cannot both end up current.
func (r *PromptRepository) CreateVersion(ctx context.Context, prompt *domain.Prompt) (*domain.Prompt, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxVersion int
		row := tx.Model(&domain.Prompt{}).
			Where("name = ?", prompt.Name).
			Select("COALESCE(MAX(version_number), 0)").
			Row()
		if err := row.Scan(&maxVersion); err != nil {
			return err
		}

		if err := tx.Model(&domain.Prompt{}).
			Where("name = ?", prompt.Name).
			Update("is_current", false).Error; err != nil {
			return err
		}

		if prompt.ID == "" {
			prompt.ID = uuid.New().String()
		}
		prompt.VersionNumber = maxVersion + 1
		prompt.IsActive = true
		prompt.IsCurrent = true
		return tx.Create(prompt).Error
	})
	if err != nil {
		return nil, err
	}
	return prompt, nil
}

// EnsureDefaults seeds the given prompts when no version of their name
// exists yet. Existing names are left untouched.
func (r *PromptRepository) EnsureDefaults(ctx context.Context, defaults []domain.Prompt) error {
	for _, p := range defaults {
		var count int64
		if err := r.db.WithContext(ctx).Model(&domain.Prompt{}).
			Where("name = ?", p.Name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		p.ID = uuid.New().String()
		p.VersionNumber = 1
		p.IsActive = true
		p.IsCurrent = true
		if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return err
		}
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/phishguard/awareness-service/internal/models"
	"github.com/phishguard/awareness-service/internal/repositories"
)

type TemplatePostgreSQL struct {
	db *gorm.DB
}

func NewTemplatePostgreSQL(db *gorm.DB) repositories.TemplateRepository {
	return &TemplatePostgreSQL{db: db}
}

func (t *TemplatePostgreSQL) Create(ctx context.Context, template *models.Template) error {
	if err := t.db.WithContext(ctx).Create(template).Error; err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

func (t *TemplatePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Template, error) {
	var template models.Template
	if err := t.db.WithContext(ctx).First(&template, id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (t *TemplatePostgreSQL) Update(ctx context.Context, template *models.Template) error {
	result := t.db.WithContext(ctx).
		Model(&models.Template{}).
		Where("id = ?", template.ID).
		Updates(map[string]interface{}{
			"name":      template.Name,
			"category":  template.Category,
			"subject":   template.Subject,
			"body_html": template.BodyHTML,
			"body_text": template.BodyText,
			"is_sms":    template.IsSMS,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update template: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (t *TemplatePostgreSQL) Delete(ctx context.Context, id uint) error {
	result := t.db.WithContext(ctx).Delete(&models.Template{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete template: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (t *TemplatePostgreSQL) List(ctx context.Context, filters repositories.TemplateFilters) ([]*models.Template, int64, error) {
	query := t.db.WithContext(ctx).Model(&models.Template{})

	if filters.Search != "" {
		pattern := fmt.Sprintf("%%%s%%", filters.Search)
		query = query.Where("name ILIKE ? OR subject ILIKE ?", pattern, pattern)
	}
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if filters.IsSMS != nil {
		query = query.Where("is_sms = ?", *filters.IsSMS)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, "created_at", "desc",
		filters.Limit, filters.Offset, "created_at", "name")

	var templates []*models.Template
	if err := query.Find(&templates).Error; err != nil {
		return nil, 0, err
	}
	return templates, total, nil
}

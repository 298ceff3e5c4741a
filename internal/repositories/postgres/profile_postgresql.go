package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/phishguard/awareness-service/internal/models"
	"github.com/phishguard/awareness-service/internal/repositories"
)

type ProfilePostgreSQL struct {
	db *gorm.DB
}

func NewProfilePostgreSQL(db *gorm.DB) repositories.ProfileRepository {
	return &ProfilePostgreSQL{db: db}
}

func (p *ProfilePostgreSQL) Create(ctx context.Context, profile *models.Profile) error {
	if err := p.db.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (p *ProfilePostgreSQL) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	err := p.db.WithContext(ctx).
		Preload("Department").
		First(&profile, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (p *ProfilePostgreSQL) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	err := p.db.WithContext(ctx).
		Preload("Department").
		First(&profile, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (p *ProfilePostgreSQL) Update(ctx context.Context, profile *models.Profile) error {
	return p.db.WithContext(ctx).Save(profile).Error
}

func (p *ProfilePostgreSQL) List(ctx context.Context, filters repositories.ProfileFilters) ([]*models.Profile, int64, error) {
	query := p.db.WithContext(ctx).Model(&models.Profile{})

	if filters.Search != "" {
		pattern := fmt.Sprintf("%%%s%%", filters.Search)
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if filters.DepartmentID != nil {
		query = query.Where("department_id = ?", *filters.DepartmentID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, "full_name", "asc",
		filters.Limit, filters.Offset, "full_name", "created_at")

	var profiles []*models.Profile
	if err := query.Preload("Department").Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func (p *ProfilePostgreSQL) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return p.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

// GetOrCreateDepartment resolves a department by name, creating it on
// first use so admin forms can type free-text department names.
func (p *ProfilePostgreSQL) GetOrCreateDepartment(ctx context.Context, name string) (*models.Department, error) {
	var dept models.Department
	err := p.db.WithContext(ctx).First(&dept, "name = ?", name).Error
	if err == nil {
		return &dept, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	dept = models.Department{Name: name}
	if err := p.db.WithContext(ctx).Create(&dept).Error; err != nil {
		return nil, fmt.Errorf("failed to create department: %w", err)
	}
	return &dept, nil
}

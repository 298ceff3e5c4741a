package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/phishguard/awareness-service/internal/models"
	"github.com/phishguard/awareness-service/internal/repositories"
	"github.com/phishguard/awareness-service/internal/utils"
)

// ProfileService manages employee accounts shown on the users screen.
type ProfileService interface {
	Create(ctx context.Context, req *CreateProfileRequest) (*models.Profile, error)
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	Update(ctx context.Context, id string, req *UpdateProfileRequest) (*models.Profile, error)
	List(ctx context.Context, filters repositories.ProfileFilters) ([]*models.Profile, int64, error)
}

type profileService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
}

func NewProfileService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator) ProfileService {
	return &profileService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// ===== REQUEST TYPES =====

type CreateProfileRequest struct {
	FullName   string          `json:"full_name" validate:"required,min=1,max=200"`
	Email      string          `json:"email" validate:"required,email"`
	Password   string          `json:"password" validate:"required,min=8,max=72"`
	Role       models.UserRole `json:"role" validate:"required,user_role"`
	Department string          `json:"department"`
}

type UpdateProfileRequest struct {
	FullName   *string          `json:"full_name" validate:"omitempty,min=1,max=200"`
	Role       *models.UserRole `json:"role" validate:"omitempty,user_role"`
	Department *string          `json:"department"`
	RiskScore  *int             `json:"risk_score" validate:"omitempty,min=0,max=100"`
	IsActive   *bool            `json:"is_active"`
}

// ===== OPERATIONS =====

func (s *profileService) Create(ctx context.Context, req *CreateProfileRequest) (*models.Profile, error) {
	s.logger.Info("Creating profile", "email", req.Email, "role", req.Role)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if existing, err := s.repo.Profile().GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	} else if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &models.Profile{
		ID:           uuid.NewString(),
		FullName:     req.FullName,
		Email:        email,
		Role:         req.Role,
		PasswordHash: string(hash),
		IsActive:     true,
	}

	if dept := strings.TrimSpace(req.Department); dept != "" {
		department, err := s.repo.Profile().GetOrCreateDepartment(ctx, dept)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve department: %w", err)
		}
		profile.DepartmentID = &department.ID
	}

	if err := s.repo.Profile().Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.logger.Info("Profile created", "user_id", profile.ID)
	return profile, nil
}

func (s *profileService) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	profile, err := s.repo.Profile().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

func (s *profileService) Update(ctx context.Context, id string, req *UpdateProfileRequest) (*models.Profile, error) {
	s.logger.Info("Updating profile", "user_id", id)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	profile, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if req.Role != nil {
		profile.Role = *req.Role
	}
	if req.RiskScore != nil {
		profile.RiskScore = *req.RiskScore
	}
	if req.IsActive != nil {
		profile.IsActive = *req.IsActive
	}
	if req.Department != nil {
		if dept := strings.TrimSpace(*req.Department); dept != "" {
			department, err := s.repo.Profile().GetOrCreateDepartment(ctx, dept)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve department: %w", err)
			}
			profile.DepartmentID = &department.ID
		} else {
			profile.DepartmentID = nil
		}
	}

	if err := s.repo.Profile().Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}

func (s *profileService) List(ctx context.Context, filters repositories.ProfileFilters) ([]*models.Profile, int64, error) {
	profiles, total, err := s.repo.Profile().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, total, nil
}

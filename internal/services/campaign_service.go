package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phishguard/awareness-service/internal/events"
	"github.com/phishguard/awareness-service/internal/models"
	"github.com/phishguard/awareness-service/internal/repositories"
	"github.com/phishguard/awareness-service/internal/utils"
)

// CampaignService manages simulation campaigns: creation, recipient
// enrollment and the draft/scheduled/running/completed lifecycle.
type CampaignService interface {
	Create(ctx context.Context, req *CreateCampaignRequest, creatorID string) (*models.Campaign, error)
	GetByID(ctx context.Context, id uint) (*models.Campaign, error)
	List(ctx context.Context, filters repositories.CampaignFilters) ([]*models.Campaign, int64, error)

	AddRecipients(ctx context.Context, campaignID uint, userIDs []string) error
	ListRecipients(ctx context.Context, campaignID uint) ([]*models.CampaignRecipient, error)

	Schedule(ctx context.Context, id uint, at time.Time) error
	Launch(ctx context.Context, id uint) error
	Complete(ctx context.Context, id uint) error
}

type campaignService struct {
	repo      repositories.Repository
	publisher events.Publisher
	logger    *slog.Logger
	validator *utils.Validator
}

func NewCampaignService(repo repositories.Repository, publisher events.Publisher, logger *slog.Logger, validator *utils.Validator) CampaignService {
	return &campaignService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== REQUEST TYPES =====

type CreateCampaignRequest struct {
	Name       string              `json:"name" validate:"required,min=3,max=200"`
	Type       models.CampaignType `json:"type" validate:"required,campaign_type"`
	Audience   string              `json:"audience" validate:"required,min=1,max=200"`
	TemplateID *uint               `json:"template_id"`
	ScheduleAt *time.Time          `json:"schedule_at"`
	Recipients []string            `json:"recipients"`
}

// validTransitions is the campaign lifecycle. Completed is terminal.
var validTransitions = map[models.CampaignStatus][]models.CampaignStatus{
	models.CampaignDraft:     {models.CampaignScheduled, models.CampaignRunning},
	models.CampaignScheduled: {models.CampaignRunning},
	models.CampaignRunning:   {models.CampaignCompleted},
}

// ===== OPERATIONS =====

func (s *campaignService) Create(ctx context.Context, req *CreateCampaignRequest, creatorID string) (*models.Campaign, error) {
	s.logger.Info("Creating campaign", "creator_id", creatorID, "name", req.Name, "type", req.Type)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.TemplateID != nil {
		if _, err := s.repo.Template().GetByID(ctx, *req.TemplateID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrTemplateNotFound
			}
			return nil, fmt.Errorf("failed to check template: %w", err)
		}
	}

	status := models.CampaignDraft
	if req.ScheduleAt != nil {
		status = models.CampaignScheduled
	}

	campaign := &models.Campaign{
		Name:       req.Name,
		Type:       req.Type,
		Status:     status,
		Audience:   req.Audience,
		TemplateID: req.TemplateID,
		ScheduleAt: req.ScheduleAt,
		CreatedBy:  creatorID,
	}
	if err := s.repo.Campaign().Create(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	if len(req.Recipients) > 0 {
		if err := s.repo.Campaign().AddRecipients(ctx, campaign.ID, req.Recipients); err != nil {
			return nil, fmt.Errorf("failed to enroll recipients: %w", err)
		}
	}

	s.publishLifecycle(ctx, events.EventCampaignCreated, campaign)
	if status == models.CampaignScheduled {
		s.publishLifecycle(ctx, events.EventCampaignScheduled, campaign)
	}

	s.logger.Info("Campaign created", "campaign_id", campaign.ID, "status", campaign.Status)
	return campaign, nil
}

func (s *campaignService) GetByID(ctx context.Context, id uint) (*models.Campaign, error) {
	campaign, err := s.repo.Campaign().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return campaign, nil
}

func (s *campaignService) List(ctx context.Context, filters repositories.CampaignFilters) ([]*models.Campaign, int64, error) {
	campaigns, total, err := s.repo.Campaign().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, total, nil
}

func (s *campaignService) AddRecipients(ctx context.Context, campaignID uint, userIDs []string) error {
	campaign, err := s.GetByID(ctx, campaignID)
	if err != nil {
		return err
	}
	if campaign.Status == models.CampaignCompleted {
		return ErrCampaignNotEditable
	}

	for _, userID := range userIDs {
		if _, err := s.repo.Profile().GetByID(ctx, userID); err != nil {
			if repositories.IsNotFoundError(err) {
				return fmt.Errorf("%w: %s", ErrProfileNotFound, userID)
			}
			return fmt.Errorf("failed to check recipient: %w", err)
		}
	}

	if err := s.repo.Campaign().AddRecipients(ctx, campaignID, userIDs); err != nil {
		return fmt.Errorf("failed to enroll recipients: %w", err)
	}
	return nil
}

func (s *campaignService) ListRecipients(ctx context.Context, campaignID uint) ([]*models.CampaignRecipient, error) {
	if _, err := s.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}
	recipients, err := s.repo.Campaign().ListRecipients(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}
	return recipients, nil
}

func (s *campaignService) Schedule(ctx context.Context, id uint, at time.Time) error {
	campaign, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := checkTransition(campaign.Status, models.CampaignScheduled); err != nil {
		return err
	}

	campaign.Status = models.CampaignScheduled
	campaign.ScheduleAt = &at
	if err := s.repo.Campaign().Update(ctx, campaign); err != nil {
		return fmt.Errorf("failed to schedule campaign: %w", err)
	}

	s.publishLifecycle(ctx, events.EventCampaignScheduled, campaign)
	s.logger.Info("Campaign scheduled", "campaign_id", id, "schedule_at", at)
	return nil
}

// Launch moves a campaign to running and stamps every enrolled
// recipient as sent. The sent timestamps feed the dashboard rates.
func (s *campaignService) Launch(ctx context.Context, id uint) error {
	campaign, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := checkTransition(campaign.Status, models.CampaignRunning); err != nil {
		return err
	}

	recipients, err := s.repo.Campaign().ListRecipients(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list recipients: %w", err)
	}
	if len(recipients) == 0 {
		return ErrCampaignNoRecipients
	}

	if err := s.repo.Campaign().UpdateStatus(ctx, id, models.CampaignRunning); err != nil {
		return fmt.Errorf("failed to update campaign status: %w", err)
	}

	now := time.Now()
	for _, recipient := range recipients {
		if recipient.SentAt != nil {
			continue
		}
		if err := s.repo.Campaign().MarkRecipientSent(ctx, id, recipient.UserID, now); err != nil {
			s.logger.Error("Failed to mark recipient sent",
				"campaign_id", id, "user_id", recipient.UserID, "error", err)
		}
	}

	campaign.Status = models.CampaignRunning
	s.publishLifecycle(ctx, events.EventCampaignLaunched, campaign)

	s.logger.Info("Campaign launched", "campaign_id", id, "recipients", len(recipients))
	return nil
}

func (s *campaignService) Complete(ctx context.Context, id uint) error {
	campaign, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := checkTransition(campaign.Status, models.CampaignCompleted); err != nil {
		return err
	}

	if err := s.repo.Campaign().UpdateStatus(ctx, id, models.CampaignCompleted); err != nil {
		return fmt.Errorf("failed to update campaign status: %w", err)
	}

	campaign.Status = models.CampaignCompleted
	s.publishLifecycle(ctx, events.EventCampaignCompleted, campaign)

	s.logger.Info("Campaign completed", "campaign_id", id)
	return nil
}

// ===== HELPERS =====

func checkTransition(from, to models.CampaignStatus) error {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrCampaignInvalidStatus, from, to)
}

func (s *campaignService) publishLifecycle(ctx context.Context, eventType events.EventType, campaign *models.Campaign) {
	if s.publisher == nil {
		return
	}
	event := events.NewSimulationEvent(eventType, map[string]any{
		"campaign_id": campaign.ID,
		"name":        campaign.Name,
		"type":        string(campaign.Type),
		"status":      string(campaign.Status),
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish campaign event", "campaign_id", campaign.ID, "error", err)
	}
}

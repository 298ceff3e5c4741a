package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"

	"github.com/phishguard/awareness-service/internal/events"
	"github.com/phishguard/awareness-service/internal/models"
	"github.com/phishguard/awareness-service/internal/repositories"
	"github.com/phishguard/awareness-service/internal/utils"
)

// EventService records recipient outcomes reported by the landing
// pages (clicked, reported, opened, downloaded).
type EventService interface {
	TrackEvent(ctx context.Context, req *TrackEventRequest) (*models.SimEvent, error)
}

type eventService struct {
	repo      repositories.Repository
	publisher events.Publisher
	logger    *slog.Logger
	validator *utils.Validator
}

func NewEventService(repo repositories.Repository, publisher events.Publisher, logger *slog.Logger, validator *utils.Validator) EventService {
	return &eventService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

type TrackEventRequest struct {
	CampaignID uint                `json:"campaign_id" validate:"required"`
	UserID     string              `json:"user_id" validate:"required"`
	Type       models.SimEventType `json:"type" validate:"required,sim_event_type"`
	Metadata   map[string]any      `json:"metadata"`
}

// TrackEvent persists the outcome and then publishes it. A persistence
// failure is returned verbatim; a publish failure is only logged so the
// landing page never sees it.
func (s *eventService) TrackEvent(ctx context.Context, req *TrackEventRequest) (*models.SimEvent, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.Campaign().GetByID(ctx, req.CampaignID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to check campaign: %w", err)
	}

	event := &models.SimEvent{
		CampaignID: req.CampaignID,
		UserID:     req.UserID,
		Type:       req.Type,
	}
	if len(req.Metadata) > 0 {
		raw, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to encode event metadata: %w", err)
		}
		event.Metadata = datatypes.JSON(raw)
	}

	if err := s.repo.Event().Create(ctx, event); err != nil {
		return nil, err
	}

	s.publish(ctx, event)

	s.logger.Info("Simulation event recorded",
		"campaign_id", event.CampaignID, "user_id", event.UserID, "type", event.Type)
	return event, nil
}

func (s *eventService) publish(ctx context.Context, event *models.SimEvent) {
	if s.publisher == nil {
		return
	}

	var eventType events.EventType
	switch event.Type {
	case models.EventClicked:
		eventType = events.EventPhishClicked
	case models.EventReported:
		eventType = events.EventPhishReported
	case models.EventOpened:
		eventType = events.EventPhishOpened
	case models.EventDownloaded:
		eventType = events.EventPhishDownloaded
	default:
		return
	}

	envelope := events.NewRecipientEvent(eventType, event.CampaignID, event.UserID)
	if err := s.publisher.Publish(ctx, envelope); err != nil {
		s.logger.Error("Failed to publish simulation event",
			"campaign_id", event.CampaignID, "type", event.Type, "error", err)
	}
}

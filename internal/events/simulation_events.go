package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	// Recipient outcomes during a running campaign.
	EventPhishClicked    EventType = "phish.clicked"
	EventPhishReported   EventType = "phish.reported"
	EventPhishOpened     EventType = "phish.opened"
	EventPhishDownloaded EventType = "phish.downloaded"

	// Training outcomes.
	EventQuizSubmitted EventType = "quiz.submitted"

	// Campaign lifecycle.
	EventCampaignCreated   EventType = "campaign.created"
	EventCampaignScheduled EventType = "campaign.scheduled"
	EventCampaignLaunched  EventType = "campaign.launched"
	EventCampaignCompleted EventType = "campaign.completed"
)

const eventSource = "awareness-service"

// SimulationEvent is the envelope published for every tracked outcome.
type SimulationEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Source    string         `json:"source"`
	Version   string         `json:"version"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload"`
}

func NewSimulationEvent(eventType EventType, payload map[string]any) *SimulationEvent {
	return &SimulationEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    eventSource,
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// NewQuizSubmittedEvent records a completed quiz attempt.
func NewQuizSubmittedEvent(quizID uint, userID string, score int) *SimulationEvent {
	return NewSimulationEvent(EventQuizSubmitted, map[string]any{
		"quiz_id": quizID,
		"user_id": userID,
		"score":   score,
	})
}

// NewRecipientEvent records a recipient outcome (click, report, open,
// download) against a campaign.
func NewRecipientEvent(eventType EventType, campaignID uint, userID string) *SimulationEvent {
	return NewSimulationEvent(eventType, map[string]any{
		"campaign_id": campaignID,
		"user_id":     userID,
	})
}

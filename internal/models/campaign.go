package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CampaignType string

const (
	CampaignFakeLogin     CampaignType = "fake_login"
	CampaignSpearPhishing CampaignType = "spear_phishing"
	CampaignSmishing      CampaignType = "smishing"
)

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignScheduled CampaignStatus = "scheduled"
	CampaignRunning   CampaignStatus = "running"
	CampaignCompleted CampaignStatus = "completed"
)

type Campaign struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	Name       string         `json:"name" gorm:"not null;size:200;index" validate:"required,min=3,max=200"`
	Type       CampaignType   `json:"type" gorm:"not null" validate:"required,campaign_type"`
	Status     CampaignStatus `json:"status" gorm:"not null;default:draft;index"`
	Audience   string         `json:"audience" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	TemplateID *uint          `json:"template_id" gorm:"index"`
	ScheduleAt *time.Time     `json:"schedule_at"`

	CreatedBy string         `json:"created_by" gorm:"size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Template   *Template           `json:"template,omitempty" gorm:"foreignKey:TemplateID"`
	Recipients []CampaignRecipient `json:"recipients,omitempty" gorm:"foreignKey:CampaignID"`

	// Computed (not stored)
	SentCount     int `json:"sent_count" gorm:"-"`
	ClickedCount  int `json:"clicked_count" gorm:"-"`
	ReportedCount int `json:"reported_count" gorm:"-"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

type CampaignRecipient struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	CampaignID uint       `json:"campaign_id" gorm:"not null;index;uniqueIndex:idx_campaign_user"`
	UserID     string     `json:"user_id" gorm:"not null;size:255;index;uniqueIndex:idx_campaign_user"`
	SentAt     *time.Time `json:"sent_at"`

	Profile *Profile `json:"profile,omitempty" gorm:"foreignKey:UserID"`
}

func (CampaignRecipient) TableName() string {
	return "campaign_recipients"
}

type SimEventType string

const (
	EventOpened     SimEventType = "opened"
	EventClicked    SimEventType = "clicked"
	EventReported   SimEventType = "reported"
	EventDownloaded SimEventType = "downloaded"
)

// SimEvent records one recipient outcome during a simulation, e.g. the
// landing page logging a click. Append-only.
type SimEvent struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	CampaignID uint           `json:"campaign_id" gorm:"not null;index"`
	UserID     string         `json:"user_id" gorm:"not null;size:255;index"`
	Type       SimEventType   `json:"type" gorm:"not null;index" validate:"required,sim_event_type"`
	Metadata   datatypes.JSON `json:"metadata" gorm:"type:jsonb"`
	CreatedAt  time.Time      `json:"created_at"`

	Campaign *Campaign `json:"-" gorm:"foreignKey:CampaignID"`
}

func (SimEvent) TableName() string {
	return "events"
}

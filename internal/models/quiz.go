package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Quiz struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	Title    string  `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	ThumbURL *string `json:"thumb_url" gorm:"size:500" validate:"omitempty,max=500"`

	// Canonical question-set blob: {"questions":[{text, options[4], answer 1..4} x 10]}.
	// Replaced wholesale on save, never patched field by field.
	ConfigJSON datatypes.JSON `json:"config_json" gorm:"type:jsonb"`

	CreatedBy string         `json:"created_by" gorm:"size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Attempts []QuizAttempt `json:"attempts,omitempty" gorm:"foreignKey:QuizID"`

	// Computed (not stored)
	AttemptCount int `json:"attempt_count" gorm:"-"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// QuizAttempt is append-only: one row per completed taking session,
// never updated or deleted by this service.
type QuizAttempt struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	QuizID      uint      `json:"quiz_id" gorm:"not null;index"`
	UserID      string    `json:"user_id" gorm:"not null;size:255;index"`
	Score       int       `json:"score" gorm:"not null" validate:"min=0,max=10"`
	SubmittedAt time.Time `json:"submitted_at" gorm:"not null"`

	Quiz Quiz `json:"-" gorm:"foreignKey:QuizID"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

package models

import (
	"time"

	"gorm.io/gorm"
)

type TemplateCategory string

const (
	CategoryFakeInvoice   TemplateCategory = "Fake Invoice"
	CategoryPasswordReset TemplateCategory = "Password Reset"
	CategoryUrgentRequest TemplateCategory = "Urgent Request"
	CategorySmishing      TemplateCategory = "Smishing"
	CategoryFakeLogin     TemplateCategory = "Fake Login"
)

func TemplateCategories() []TemplateCategory {
	return []TemplateCategory{
		CategoryFakeInvoice,
		CategoryPasswordReset,
		CategoryUrgentRequest,
		CategorySmishing,
		CategoryFakeLogin,
	}
}

// Template is a phishing lure sent during a campaign. SMS templates carry
// only body_text; subject and body_html stay null.
type Template struct {
	ID       uint             `json:"id" gorm:"primaryKey"`
	Name     string           `json:"name" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Category TemplateCategory `json:"category" gorm:"not null;size:50" validate:"required"`
	Subject  *string          `json:"subject" gorm:"size:500"`
	BodyHTML *string          `json:"body_html" gorm:"type:text"`
	BodyText *string          `json:"body_text" gorm:"type:text"`
	IsSMS    bool             `json:"is_sms" gorm:"default:false"`

	CreatedBy string         `json:"created_by" gorm:"size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Template) TableName() string {
	return "templates"
}

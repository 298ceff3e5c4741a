package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleEmployee UserRole = "employee"
	RoleAdmin    UserRole = "admin"
)

// Profile is the directory entry for everyone the platform can test or train.
type Profile struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	FullName string   `json:"full_name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`
	Role     UserRole `json:"role" gorm:"not null;default:employee;index" validate:"omitempty,user_role"`

	// bcrypt hash, never serialized
	PasswordHash string `json:"-" gorm:"not null;size:100"`

	DepartmentID *uint `json:"department_id" gorm:"index"`
	RiskScore    int   `json:"risk_score" gorm:"default:0" validate:"min=0,max=100"`

	IsActive    bool       `json:"is_active" gorm:"default:true"`
	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Department *Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

type Department struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null;size:100" validate:"required,max=100"`
}

func (Department) TableName() string {
	return "departments"
}

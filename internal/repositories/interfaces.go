package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/phishguard/awareness-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type QuizFilters struct {
	Search    string `json:"search"` // matches title or thumb URL
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SortBy    string `json:"sort_by"`    // "created_at", "title"
	SortOrder string `json:"sort_order"` // "asc", "desc"
}

type AttemptFilters struct {
	QuizID   *uint      `json:"quiz_id"`
	UserID   *string    `json:"user_id"`
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

type ProfileFilters struct {
	Search       string           `json:"search"` // matches name or email
	Role         *models.UserRole `json:"role"`
	DepartmentID *uint            `json:"department_id"`
	Limit        int              `json:"limit"`
	Offset       int              `json:"offset"`
}

type TemplateFilters struct {
	Search   string                   `json:"search"`
	Category *models.TemplateCategory `json:"category"`
	IsSMS    *bool                    `json:"is_sms"`
	Limit    int                      `json:"limit"`
	Offset   int                      `json:"offset"`
}

type CampaignFilters struct {
	Status     *models.CampaignStatus `json:"status"`
	Type       *models.CampaignType   `json:"type"`
	TemplateID *uint                  `json:"template_id"`
	CreatedBy  *string                `json:"created_by"`
	Limit      int                    `json:"limit"`
	Offset     int                    `json:"offset"`
	SortBy     string                 `json:"sort_by"`
	SortOrder  string                 `json:"sort_order"`
}

// ReportFilters scope the per-recipient outcome report.
type ReportFilters struct {
	DateFrom     *time.Time `json:"date_from"`
	DateTo       *time.Time `json:"date_to"`
	CampaignName string     `json:"campaign_name"`
	Department   string     `json:"department"`
	Limit        int        `json:"limit"`
	Offset       int        `json:"offset"`
}

// ===== SHARED RESULT STRUCTS =====

// ReportRow is one recipient's outcome in one campaign.
type ReportRow struct {
	UserID     string `json:"user_id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Campaign   string `json:"campaign"`
	Department string `json:"department"`
	Opened     bool   `json:"opened"`
	Clicked    bool   `json:"clicked"`
	Reported   bool   `json:"reported"`
	Downloaded bool   `json:"downloaded"`
}

// TrendPoint is one bucket of a time-series aggregate.
type TrendPoint struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

type QuizStats struct {
	TotalAttempts int     `json:"total_attempts"`
	AverageScore  float64 `json:"average_score"`
}

// ===== REPOSITORY INTERFACES =====

type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	Update(ctx context.Context, quiz *models.Quiz) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters QuizFilters) ([]*models.Quiz, int64, error)
	GetStats(ctx context.Context, id uint) (*QuizStats, error)
}

type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	List(ctx context.Context, filters AttemptFilters) ([]*models.QuizAttempt, int64, error)
	CountByQuiz(ctx context.Context, quizID uint) (int64, error)
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	List(ctx context.Context, filters ProfileFilters) ([]*models.Profile, int64, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	GetOrCreateDepartment(ctx context.Context, name string) (*models.Department, error)
}

type TemplateRepository interface {
	Create(ctx context.Context, template *models.Template) error
	GetByID(ctx context.Context, id uint) (*models.Template, error)
	Update(ctx context.Context, template *models.Template) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters TemplateFilters) ([]*models.Template, int64, error)
}

type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	GetByID(ctx context.Context, id uint) (*models.Campaign, error)
	Update(ctx context.Context, campaign *models.Campaign) error
	UpdateStatus(ctx context.Context, id uint, status models.CampaignStatus) error
	List(ctx context.Context, filters CampaignFilters) ([]*models.Campaign, int64, error)
	AddRecipients(ctx context.Context, campaignID uint, userIDs []string) error
	ListRecipients(ctx context.Context, campaignID uint) ([]*models.CampaignRecipient, error)
	MarkRecipientSent(ctx context.Context, campaignID uint, userID string, at time.Time) error
	CountSentRecipients(ctx context.Context) (int64, error)
	CountDistinctRecipients(ctx context.Context) (int64, error)
}

type EventRepository interface {
	Create(ctx context.Context, event *models.SimEvent) error
	CountByType(ctx context.Context, eventType models.SimEventType) (int64, error)
	WeeklyCounts(ctx context.Context, eventType models.SimEventType, weeks int) ([]TrendPoint, error)
	ReportRows(ctx context.Context, filters ReportFilters) ([]ReportRow, int64, error)
}

// Repository aggregates the per-entity repositories behind one handle.
type Repository interface {
	Quiz() QuizRepository
	Attempt() AttemptRepository
	Profile() ProfileRepository
	Template() TemplateRepository
	Campaign() CampaignRepository
	Event() EventRepository
}

// IsNotFoundError reports whether err means "row does not exist".
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

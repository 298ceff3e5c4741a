package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/phishguard/awareness-service/internal/models"
	"github.com/phishguard/awareness-service/internal/repositories"
)

type EventPostgreSQL struct {
	db *gorm.DB
}

func NewEventPostgreSQL(db *gorm.DB) repositories.EventRepository {
	return &EventPostgreSQL{db: db}
}

func (e *EventPostgreSQL) Create(ctx context.Context, event *models.SimEvent) error {
	if err := e.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

func (e *EventPostgreSQL) CountByType(ctx context.Context, eventType models.SimEventType) (int64, error) {
	var count int64
	err := e.db.WithContext(ctx).
		Model(&models.SimEvent{}).
		Where("type = ?", eventType).
		Count(&count).Error
	return count, err
}

// WeeklyCounts buckets events of one type into the trailing N calendar
// weeks. Buckets with no events are returned as zero so trend charts
// keep a fixed width.
func (e *EventPostgreSQL) WeeklyCounts(ctx context.Context, eventType models.SimEventType, weeks int) ([]repositories.TrendPoint, error) {
	if weeks <= 0 {
		weeks = 4
	}

	type weekCount struct {
		WeekStart time.Time `gorm:"column:week_start"`
		Count     int       `gorm:"column:count"`
	}

	since := time.Now().AddDate(0, 0, -7*weeks)
	var rows []weekCount
	err := e.db.WithContext(ctx).
		Model(&models.SimEvent{}).
		Select("date_trunc('week', created_at AT TIME ZONE 'UTC') AS week_start, COUNT(*) AS count").
		Where("type = ? AND created_at >= ?", eventType, since).
		Group("week_start").
		Order("week_start ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.WeekStart.Format("2006-01-02")] = row.Count
	}

	points := make([]repositories.TrendPoint, 0, weeks)
	for i := weeks - 1; i >= 0; i-- {
		start := startOfWeek(time.Now().AddDate(0, 0, -7*i))
		points = append(points, repositories.TrendPoint{
			Label: fmt.Sprintf("W%d", weeks-i),
			Value: counts[start.Format("2006-01-02")],
		})
	}
	return points, nil
}

// startOfWeek truncates to the Monday of t's week in UTC, matching the
// UTC-pinned date_trunc in WeeklyCounts.
func startOfWeek(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	day := t.AddDate(0, 0, -(weekday - 1))
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

// ReportRows flattens each recipient's outcomes per campaign into one
// row for the reports screen and its exports.
func (e *EventPostgreSQL) ReportRows(ctx context.Context, filters repositories.ReportFilters) ([]repositories.ReportRow, int64, error) {
	base := e.db.WithContext(ctx).
		Table("campaign_recipients AS cr").
		Joins("JOIN campaigns c ON c.id = cr.campaign_id").
		Joins("JOIN profiles p ON p.id = cr.user_id").
		Joins("LEFT JOIN departments d ON d.id = p.department_id").
		Where("c.deleted_at IS NULL")

	if filters.DateFrom != nil {
		base = base.Where("c.created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		base = base.Where("c.created_at <= ?", *filters.DateTo)
	}
	if filters.CampaignName != "" {
		base = base.Where("c.name ILIKE ?", "%"+filters.CampaignName+"%")
	}
	if filters.Department != "" {
		base = base.Where("d.name ILIKE ?", "%"+filters.Department+"%")
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filters.Limit
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}

	existsFor := func(eventType models.SimEventType) string {
		return fmt.Sprintf(
			"EXISTS (SELECT 1 FROM events ev WHERE ev.campaign_id = cr.campaign_id AND ev.user_id = cr.user_id AND ev.type = '%s') AS %s",
			eventType, eventType)
	}

	columns := "cr.user_id AS user_id, p.full_name AS full_name, p.email AS email, " +
		"c.name AS campaign, COALESCE(d.name, '') AS department, " +
		existsFor(models.EventOpened) + ", " +
		existsFor(models.EventClicked) + ", " +
		existsFor(models.EventReported) + ", " +
		existsFor(models.EventDownloaded)

	var rows []repositories.ReportRow
	err := base.
		Select(columns).
		Order("c.created_at DESC, p.full_name ASC").
		Limit(limit).
		Offset(filters.Offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

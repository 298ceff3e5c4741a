package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/phishguard/awareness-service/internal/cache"
	"github.com/phishguard/awareness-service/internal/models"
	"github.com/phishguard/awareness-service/internal/repositories"
)

const (
	dashboardCacheKey = "dashboard:stats"
	dashboardCacheTTL = 60 * time.Second
	trendWeeks        = 4
)

// DashboardService aggregates the admin landing-page figures.
type DashboardService interface {
	GetStats(ctx context.Context) (*DashboardStats, error)
}

type dashboardService struct {
	repo   repositories.Repository
	cache  cache.CacheService
	logger *slog.Logger
}

func NewDashboardService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger) DashboardService {
	return &dashboardService{
		repo:   repo,
		cache:  cacheService,
		logger: logger,
	}
}

type DashboardStats struct {
	EmployeesTested int64                     `json:"employees_tested"`
	ClickRate       int                       `json:"click_rate"`
	ReportRate      int                       `json:"report_rate"`
	ClicksTrend     []repositories.TrendPoint `json:"clicks_trend"`
	ReportsTrend    []repositories.TrendPoint `json:"reports_trend"`
	GeneratedAt     time.Time                 `json:"generated_at"`
}

// GetStats computes employees tested (distinct enrolled users), click
// and report rates as whole percents of sent recipients, and the weekly
// trend series. Results are cached briefly since every admin page load
// hits this.
func (s *dashboardService) GetStats(ctx context.Context) (*DashboardStats, error) {
	if s.cache != nil {
		var cached DashboardStats
		if err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	tested, err := s.repo.Campaign().CountDistinctRecipients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count tested employees: %w", err)
	}

	sent, err := s.repo.Campaign().CountSentRecipients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count sent recipients: %w", err)
	}
	clicks, err := s.repo.Event().CountByType(ctx, models.EventClicked)
	if err != nil {
		return nil, fmt.Errorf("failed to count clicks: %w", err)
	}
	reports, err := s.repo.Event().CountByType(ctx, models.EventReported)
	if err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}

	clicksTrend, err := s.repo.Event().WeeklyCounts(ctx, models.EventClicked, trendWeeks)
	if err != nil {
		return nil, fmt.Errorf("failed to load click trend: %w", err)
	}
	reportsTrend, err := s.repo.Event().WeeklyCounts(ctx, models.EventReported, trendWeeks)
	if err != nil {
		return nil, fmt.Errorf("failed to load report trend: %w", err)
	}

	stats := &DashboardStats{
		EmployeesTested: tested,
		ClickRate:       wholeRate(clicks, sent),
		ReportRate:      wholeRate(reports, sent),
		ClicksTrend:     clicksTrend,
		ReportsTrend:    reportsTrend,
		GeneratedAt:     time.Now().UTC(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardCacheKey, stats, dashboardCacheTTL); err != nil {
			s.logger.Warn("Failed to cache dashboard stats", "error", err)
		}
	}
	return stats, nil
}

// wholeRate rounds count/total to a whole percent; zero total yields 0.
func wholeRate(count, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

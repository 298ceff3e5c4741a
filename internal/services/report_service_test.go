package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/phishguard/awareness-service/internal/models"
	"github.com/phishguard/awareness-service/internal/repositories"
)

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, event *models.SimEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) CountByType(ctx context.Context, eventType models.SimEventType) (int64, error) {
	args := m.Called(ctx, eventType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEventRepository) WeeklyCounts(ctx context.Context, eventType models.SimEventType, weeks int) ([]repositories.TrendPoint, error) {
	args := m.Called(ctx, eventType, weeks)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repositories.TrendPoint), args.Error(1)
}

func (m *MockEventRepository) ReportRows(ctx context.Context, filters repositories.ReportFilters) ([]repositories.ReportRow, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]repositories.ReportRow), args.Get(1).(int64), args.Error(2)
}

type reportMockRepository struct {
	MockRepository
	eventRepo *MockEventRepository
}

func (m *reportMockRepository) Event() repositories.EventRepository {
	return m.eventRepo
}

func newReportMockRepository() *reportMockRepository {
	return &reportMockRepository{
		eventRepo: &MockEventRepository{},
	}
}

func makeReportRows(start, count int) []repositories.ReportRow {
	rows := make([]repositories.ReportRow, 0, count)
	for i := start; i < start+count; i++ {
		rows = append(rows, repositories.ReportRow{
			UserID:   fmt.Sprintf("user-%d", i),
			FullName: fmt.Sprintf("User %d", i),
			Email:    fmt.Sprintf("user-%d@corp.test", i),
			Campaign: "Q3 Invoice Wave",
			Clicked:  i%2 == 0,
		})
	}
	return rows
}

func TestReportService_ExportCSV(t *testing.T) {
	ctx := context.Background()

	t.Run("export spans the per-query row cap", func(t *testing.T) {
		mockRepo := newReportMockRepository()
		service := NewReportService(mockRepo, testLogger())

		total := int64(exportPageSize + 500)
		mockRepo.eventRepo.On("ReportRows", mock.Anything, mock.MatchedBy(func(f repositories.ReportFilters) bool {
			return f.Limit == exportPageSize && f.Offset == 0
		})).Return(makeReportRows(0, exportPageSize), total, nil).Once()
		mockRepo.eventRepo.On("ReportRows", mock.Anything, mock.MatchedBy(func(f repositories.ReportFilters) bool {
			return f.Limit == exportPageSize && f.Offset == exportPageSize
		})).Return(makeReportRows(exportPageSize, 500), total, nil).Once()

		out, err := service.ExportCSV(ctx, repositories.ReportFilters{})

		assert.NoError(t, err)
		records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
		assert.NoError(t, err)
		assert.Len(t, records, int(total)+1) // header plus every row
		assert.Equal(t, reportHeaders, records[0])
		assert.Equal(t, fmt.Sprintf("user-%d@corp.test", total-1), records[total][1])
		mockRepo.eventRepo.AssertExpectations(t)
	})

	t.Run("interactive pagination is ignored for exports", func(t *testing.T) {
		mockRepo := newReportMockRepository()
		service := NewReportService(mockRepo, testLogger())

		mockRepo.eventRepo.On("ReportRows", mock.Anything, mock.MatchedBy(func(f repositories.ReportFilters) bool {
			return f.Limit == exportPageSize && f.Offset == 0
		})).Return(makeReportRows(0, 3), int64(3), nil).Once()

		out, err := service.ExportCSV(ctx, repositories.ReportFilters{Limit: 1, Offset: 2})

		assert.NoError(t, err)
		records, readErr := csv.NewReader(bytes.NewReader(out)).ReadAll()
		assert.NoError(t, readErr)
		assert.Len(t, records, 4)
		mockRepo.eventRepo.AssertExpectations(t)
	})

	t.Run("empty result still writes the header", func(t *testing.T) {
		mockRepo := newReportMockRepository()
		service := NewReportService(mockRepo, testLogger())

		mockRepo.eventRepo.On("ReportRows", mock.Anything, mock.Anything).
			Return([]repositories.ReportRow{}, int64(0), nil).Once()

		out, err := service.ExportCSV(ctx, repositories.ReportFilters{})

		assert.NoError(t, err)
		records, readErr := csv.NewReader(bytes.NewReader(out)).ReadAll()
		assert.NoError(t, readErr)
		assert.Len(t, records, 1)
	})
}

package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/phishguard/awareness-service/internal/repositories"
)

// ReportService produces the per-recipient outcome report and its
// CSV / Excel exports.
type ReportService interface {
	GetRows(ctx context.Context, filters repositories.ReportFilters) ([]repositories.ReportRow, int64, error)
	ExportCSV(ctx context.Context, filters repositories.ReportFilters) ([]byte, error)
	ExportExcel(ctx context.Context, filters repositories.ReportFilters) ([]byte, error)
}

type reportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, logger *slog.Logger) ReportService {
	return &reportService{
		repo:   repo,
		logger: logger,
	}
}

var reportHeaders = []string{
	"User", "Email", "Campaign", "Department", "Opened", "Clicked", "Reported", "Downloaded",
}

func (s *reportService) GetRows(ctx context.Context, filters repositories.ReportFilters) ([]repositories.ReportRow, int64, error) {
	rows, total, err := s.repo.Event().ReportRows(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load report rows: %w", err)
	}
	return rows, total, nil
}

func (s *reportService) ExportCSV(ctx context.Context, filters repositories.ReportFilters) ([]byte, error) {
	rows, err := s.allRows(ctx, filters)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(reportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.FullName,
			row.Email,
			row.Campaign,
			row.Department,
			yesNo(row.Opened),
			yesNo(row.Clicked),
			yesNo(row.Reported),
			yesNo(row.Downloaded),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	s.logger.Info("Report exported", "format", "csv", "rows", len(rows))
	return buf.Bytes(), nil
}

func (s *reportService) ExportExcel(ctx context.Context, filters repositories.ReportFilters) ([]byte, error) {
	rows, err := s.allRows(ctx, filters)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Report"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	for i, header := range reportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, row := range rows {
		values := []interface{}{
			row.FullName,
			row.Email,
			row.Campaign,
			row.Department,
			yesNo(row.Opened),
			yesNo(row.Clicked),
			yesNo(row.Reported),
			yesNo(row.Downloaded),
		}
		for colIndex, value := range values {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Report exported", "format", "xlsx", "rows", len(rows))
	return buf.Bytes(), nil
}

// exportPageSize matches the repository's per-query row cap.
const exportPageSize = 1000

// allRows pages through the whole filtered set. Exports must not stop
// at the interactive page cap, so the reported total drives the loop.
func (s *reportService) allRows(ctx context.Context, filters repositories.ReportFilters) ([]repositories.ReportRow, error) {
	filters.Limit = exportPageSize
	filters.Offset = 0

	var out []repositories.ReportRow
	for {
		rows, total, err := s.repo.Event().ReportRows(ctx, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to load report rows: %w", err)
		}
		out = append(out, rows...)
		if int64(len(out)) >= total || len(rows) == 0 {
			return out, nil
		}
		filters.Offset += len(rows)
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

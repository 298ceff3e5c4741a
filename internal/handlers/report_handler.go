package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/phishguard/awareness-service/internal/repositories"
	"github.com/phishguard/awareness-service/internal/services"
	"github.com/phishguard/awareness-service/internal/utils"
)

type ReportHandler struct {
	BaseHandler
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
	}
}

func (h *ReportHandler) GetReport(c *gin.Context) {
	filters := h.parseReportFilters(c)

	rows, total, err := h.reportService.GetRows(c.Request.Context(), filters)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rows":  rows,
		"total": total,
	})
}

// ExportReport streams the filtered report; format=csv (default) or
// format=xlsx.
func (h *ReportHandler) ExportReport(c *gin.Context) {
	filters := h.parseReportFilters(c)
	stamp := time.Now().Format("2006-01-02")

	switch c.DefaultQuery("format", "csv") {
	case "xlsx":
		data, err := h.reportService.ExportExcel(c.Request.Context(), filters)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		filename := fmt.Sprintf("phishing-report-%s.xlsx", stamp)
		c.Header("Content-Disposition", "attachment; filename="+filename)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	case "csv":
		data, err := h.reportService.ExportCSV(c.Request.Context(), filters)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		filename := fmt.Sprintf("phishing-report-%s.csv", stamp)
		c.Header("Content-Disposition", "attachment; filename="+filename)
		c.Data(http.StatusOK, "text/csv", data)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported export format",
		})
	}
}

func (h *ReportHandler) parseReportFilters(c *gin.Context) repositories.ReportFilters {
	limit, offset := pageToOffset(c)
	return repositories.ReportFilters{
		DateFrom:     parseTimeQuery(c, "date_from"),
		DateTo:       parseTimeQuery(c, "date_to"),
		CampaignName: c.Query("campaign"),
		Department:   c.Query("department"),
		Limit:        limit,
		Offset:       offset,
	}
}

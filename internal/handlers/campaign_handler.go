package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/phishguard/awareness-service/internal/models"
	"github.com/phishguard/awareness-service/internal/repositories"
	"github.com/phishguard/awareness-service/internal/services"
	"github.com/phishguard/awareness-service/internal/utils"
)

type CampaignHandler struct {
	BaseHandler
	campaignService services.CampaignService
	validator       *utils.Validator
}

func NewCampaignHandler(campaignService services.CampaignService, validator *utils.Validator, logger utils.Logger) *CampaignHandler {
	return &CampaignHandler{
		BaseHandler:     NewBaseHandler(logger),
		campaignService: campaignService,
		validator:       validator,
	}
}

func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req services.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	campaign, err := h.campaignService.Create(c.Request.Context(), &req, userID.(string))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, campaign)
}

func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	campaign, err := h.campaignService.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, campaign)
}

func (h *CampaignHandler) ListCampaigns(c *gin.Context) {
	limit, offset := pageToOffset(c)
	filters := repositories.CampaignFilters{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if status := c.Query("status"); status != "" {
		s := models.CampaignStatus(status)
		filters.Status = &s
	}
	if campaignType := c.Query("type"); campaignType != "" {
		t := models.CampaignType(campaignType)
		filters.Type = &t
	}

	campaigns, total, err := h.campaignService.List(c.Request.Context(), filters)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"campaigns": campaigns,
		"total":     total,
	})
}

type AddRecipientsRequest struct {
	UserIDs []string `json:"user_ids" validate:"required,min=1"`
}

func (h *CampaignHandler) AddRecipients(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req AddRecipientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		handleServiceError(c, err)
		return
	}

	if err := h.campaignService.AddRecipients(c.Request.Context(), id, req.UserIDs); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Recipients enrolled",
	})
}

func (h *CampaignHandler) ListRecipients(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	recipients, err := h.campaignService.ListRecipients(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipients": recipients,
	})
}

type ScheduleCampaignRequest struct {
	ScheduleAt time.Time `json:"schedule_at" validate:"required"`
}

func (h *CampaignHandler) ScheduleCampaign(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req ScheduleCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.campaignService.Schedule(c.Request.Context(), id, req.ScheduleAt); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Campaign scheduled",
	})
}

func (h *CampaignHandler) LaunchCampaign(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Launching campaign", "campaign_id", id)

	if err := h.campaignService.Launch(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Campaign launched",
	})
}

func (h *CampaignHandler) CompleteCampaign(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.campaignService.Complete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Campaign completed",
	})
}

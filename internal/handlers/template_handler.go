package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phishguard/awareness-service/internal/models"
	"github.com/phishguard/awareness-service/internal/repositories"
	"github.com/phishguard/awareness-service/internal/services"
	"github.com/phishguard/awareness-service/internal/utils"
)

type TemplateHandler struct {
	BaseHandler
	templateService services.TemplateService
	validator       *utils.Validator
}

func NewTemplateHandler(templateService services.TemplateService, validator *utils.Validator, logger utils.Logger) *TemplateHandler {
	return &TemplateHandler{
		BaseHandler:     NewBaseHandler(logger),
		templateService: templateService,
		validator:       validator,
	}
}

func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req services.SaveTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	created, err := h.templateService.Create(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	template, err := h.templateService.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, template)
}

func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.SaveTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	updated, err := h.templateService.Update(c.Request.Context(), id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.templateService.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Template deleted",
	})
}

func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	limit, offset := pageToOffset(c)
	filters := repositories.TemplateFilters{
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	}
	if category := c.Query("category"); category != "" {
		cat := models.TemplateCategory(category)
		filters.Category = &cat
	}
	if isSMS := c.Query("is_sms"); isSMS != "" {
		v := isSMS == "true"
		filters.IsSMS = &v
	}

	templates, total, err := h.templateService.List(c.Request.Context(), filters)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"templates": templates,
		"total":     total,
	})
}

// GetPresets returns the quick-start presets and the supported merge
// tags so the editor can offer both.
func (h *TemplateHandler) GetPresets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"presets":    h.templateService.Presets(),
		"merge_tags": h.templateService.MergeTags(),
	})
}

type RenderTemplateRequest struct {
	Values services.MergeValues `json:"values"`
}

func (h *TemplateHandler) RenderTemplate(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req RenderTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	rendered, err := h.templateService.Render(c.Request.Context(), id, req.Values)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rendered)
}

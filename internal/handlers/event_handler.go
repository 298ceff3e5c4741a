package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phishguard/awareness-service/internal/services"
	"github.com/phishguard/awareness-service/internal/utils"
)

type EventHandler struct {
	BaseHandler
	eventService services.EventService
	validator    *utils.Validator
}

func NewEventHandler(eventService services.EventService, validator *utils.Validator, logger utils.Logger) *EventHandler {
	return &EventHandler{
		BaseHandler:  NewBaseHandler(logger),
		eventService: eventService,
		validator:    validator,
	}
}

// TrackEvent is the landing-page logger. The user agent is captured as
// metadata when the caller does not supply its own.
func (h *EventHandler) TrackEvent(c *gin.Context) {
	var req services.TrackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if req.Metadata == nil {
		req.Metadata = map[string]any{}
	}
	if _, ok := req.Metadata["ua"]; !ok {
		req.Metadata["ua"] = c.Request.UserAgent()
	}

	event, err := h.eventService.TrackEvent(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

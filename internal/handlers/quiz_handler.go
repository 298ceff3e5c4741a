package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phishguard/awareness-service/internal/quiz"
	"github.com/phishguard/awareness-service/internal/repositories"
	"github.com/phishguard/awareness-service/internal/services"
	"github.com/phishguard/awareness-service/internal/utils"
)

type QuizHandler struct {
	BaseHandler
	quizService services.QuizService
	validator   *utils.Validator
}

func NewQuizHandler(quizService services.QuizService, validator *utils.Validator, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: NewBaseHandler(logger),
		quizService: quizService,
		validator:   validator,
	}
}

func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req services.SaveQuizRequest
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

	created, err := h.quizService.Create(c.Request.Context(), &req, userID.(string))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	resp, err := h.quizService.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.SaveQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.quizService.Update(c.Request.Context(), id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.quizService.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Quiz deleted",
	})
}

func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	limit, offset := pageToOffset(c)
	filters := repositories.QuizFilters{
		Search:    c.Query("search"),
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	resp, err := h.quizService.List(c.Request.Context(), filters)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

type SubmitQuizRequest struct {
	// Answers are 0-based option indexes; null marks an unanswered
	// question. Shorter sets leave the tail unanswered.
	Answers quiz.AnswerSet `json:"answers"`
}

func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req SubmitQuizRequest
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

	h.LogRequest(c, "Submitting quiz", "quiz_id", id)

	resp, err := h.quizService.Submit(c.Request.Context(), id, userID.(string), req.Answers)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *QuizHandler) ListAttempts(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	limit, offset := pageToOffset(c)
	filters := repositories.AttemptFilters{
		QuizID:   &id,
		DateFrom: parseTimeQuery(c, "date_from"),
		DateTo:   parseTimeQuery(c, "date_to"),
		Limit:    limit,
		Offset:   offset,
	}
	if userID := c.Query("user_id"); userID != "" {
		filters.UserID = &userID
	}

	attempts, total, err := h.quizService.ListAttempts(c.Request.Context(), filters)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attempts": attempts,
		"total":    total,
	})
}

func (h *QuizHandler) GetQuizStats(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	resp, err := h.quizService.GetStats(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

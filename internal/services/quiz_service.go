package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phishguard/awareness-service/internal/events"
	"github.com/phishguard/awareness-service/internal/models"
	"github.com/phishguard/awareness-service/internal/quiz"
	"github.com/phishguard/awareness-service/internal/repositories"
	"github.com/phishguard/awareness-service/internal/utils"
)

// QuizService manages awareness quizzes and their attempts.
type QuizService interface {
	Create(ctx context.Context, req *SaveQuizRequest, creatorID string) (*QuizResponse, error)
	GetByID(ctx context.Context, id uint) (*QuizResponse, error)
	Update(ctx context.Context, id uint, req *SaveQuizRequest) (*QuizResponse, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters repositories.QuizFilters) (*QuizListResponse, error)

	Submit(ctx context.Context, quizID uint, userID string, answers quiz.AnswerSet) (*SubmitResponse, error)
	ListAttempts(ctx context.Context, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error)
	GetStats(ctx context.Context, id uint) (*QuizStatsResponse, error)
}

type quizService struct {
	repo      repositories.Repository
	publisher events.Publisher
	logger    *slog.Logger
	validator *utils.Validator
}

func NewQuizService(repo repositories.Repository, publisher events.Publisher, logger *slog.Logger, validator *utils.Validator) QuizService {
	return &quizService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== REQUEST / RESPONSE TYPES =====

// SaveQuizRequest carries a full quiz definition. Updates replace the
// whole question list rather than patching individual questions.
type SaveQuizRequest struct {
	Title     string          `json:"title" validate:"required,min=1,max=200"`
	ThumbURL  *string         `json:"thumb_url" validate:"omitempty,max=500"`
	Questions []quiz.Question `json:"questions"`
}

type QuizResponse struct {
	ID           uint            `json:"id"`
	Title        string          `json:"title"`
	ThumbURL     *string         `json:"thumb_url"`
	Questions    []quiz.Question `json:"questions"`
	CreatedBy    string          `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
	AttemptCount int64           `json:"attempt_count"`
}

type QuizListResponse struct {
	Quizzes []*QuizResponse `json:"quizzes"`
	Total   int64           `json:"total"`
}

// QuizStatsResponse summarizes how a quiz has been performing.
type QuizStatsResponse struct {
	QuizID        uint    `json:"quiz_id"`
	TotalAttempts int     `json:"total_attempts"`
	AverageScore  float64 `json:"average_score"`
}

type SubmitResponse struct {
	QuizID      uint      `json:"quiz_id"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ===== CORE CRUD OPERATIONS =====

func (s *quizService) Create(ctx context.Context, req *SaveQuizRequest, creatorID string) (*QuizResponse, error) {
	s.logger.Info("Creating quiz", "creator_id", creatorID, "title", req.Title)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if errs := validateQuestions(req.Questions); len(errs) > 0 {
		return nil, errs
	}

	configJSON, err := quiz.MarshalConfig(req.Questions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode quiz config: %w", err)
	}

	model := &models.Quiz{
		Title:      req.Title,
		ThumbURL:   req.ThumbURL,
		ConfigJSON: configJSON,
		CreatedBy:  creatorID,
	}
	if err := s.repo.Quiz().Create(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.logger.Info("Quiz created", "quiz_id", model.ID)
	return s.buildResponse(ctx, model), nil
}

func (s *quizService) GetByID(ctx context.Context, id uint) (*QuizResponse, error) {
	model, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return s.buildResponse(ctx, model), nil
}

func (s *quizService) Update(ctx context.Context, id uint, req *SaveQuizRequest) (*QuizResponse, error) {
	s.logger.Info("Updating quiz", "quiz_id", id)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if errs := validateQuestions(req.Questions); len(errs) > 0 {
		return nil, errs
	}

	model, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	configJSON, err := quiz.MarshalConfig(req.Questions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode quiz config: %w", err)
	}

	model.Title = req.Title
	model.ThumbURL = req.ThumbURL
	model.ConfigJSON = configJSON

	if err := s.repo.Quiz().Update(ctx, model); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}

	return s.buildResponse(ctx, model), nil
}

func (s *quizService) Delete(ctx context.Context, id uint) error {
	s.logger.Info("Deleting quiz", "quiz_id", id)

	if err := s.repo.Quiz().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	return nil
}

func (s *quizService) List(ctx context.Context, filters repositories.QuizFilters) (*QuizListResponse, error) {
	quizzes, total, err := s.repo.Quiz().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	resp := &QuizListResponse{
		Quizzes: make([]*QuizResponse, 0, len(quizzes)),
		Total:   total,
	}
	for _, model := range quizzes {
		resp.Quizzes = append(resp.Quizzes, s.buildResponse(ctx, model))
	}
	return resp, nil
}

// ===== SUBMISSION =====

// Submit grades a completed attempt against the stored config and
// records it. Attempts are append-only; retakes create new rows.
func (s *quizService) Submit(ctx context.Context, quizID uint, userID string, answers quiz.AnswerSet) (*SubmitResponse, error) {
	model, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	questions := quiz.DecodeConfig(model.ConfigJSON)
	score := quiz.Grade(questions, answers)

	attempt := &models.QuizAttempt{
		QuizID:      quizID,
		UserID:      userID,
		Score:       score,
		SubmittedAt: time.Now(),
	}
	if err := s.repo.Attempt().Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}

	s.publishQuizSubmitted(ctx, quizID, userID, score)

	s.logger.Info("Quiz submitted", "quiz_id", quizID, "user_id", userID, "score", score)

	return &SubmitResponse{
		QuizID:      quizID,
		Score:       score,
		Total:       quiz.QuestionCount,
		SubmittedAt: attempt.SubmittedAt,
	}, nil
}

func (s *quizService) ListAttempts(ctx context.Context, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error) {
	attempts, total, err := s.repo.Attempt().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attempts: %w", err)
	}
	return attempts, total, nil
}

func (s *quizService) GetStats(ctx context.Context, id uint) (*QuizStatsResponse, error) {
	if _, err := s.repo.Quiz().GetByID(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	stats, err := s.repo.Quiz().GetStats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz stats: %w", err)
	}

	return &QuizStatsResponse{
		QuizID:        id,
		TotalAttempts: stats.TotalAttempts,
		AverageScore:  stats.AverageScore,
	}, nil
}

// ===== HELPERS =====

// validateQuestions enforces the rules for a saved quiz: every question
// present, every option filled, and a correct answer within 1..4.
// Drafts loaded from storage are normalized by the codec instead; these
// rules apply only at save time.
func validateQuestions(questions []quiz.Question) ValidationErrors {
	var errs ValidationErrors

	if len(questions) != quiz.QuestionCount {
		errs = append(errs, *NewValidationError("questions",
			fmt.Sprintf("exactly %d questions are required", quiz.QuestionCount), len(questions)))
		return errs
	}

	for i, q := range questions {
		field := fmt.Sprintf("questions[%d]", i)
		if strings.TrimSpace(q.Text) == "" {
			errs = append(errs, *NewValidationError(field+".text", "question text is required", q.Text))
		}
		if len(q.Options) != quiz.OptionCount {
			errs = append(errs, *NewValidationError(field+".options",
				fmt.Sprintf("exactly %d options are required", quiz.OptionCount), len(q.Options)))
		} else {
			for j, opt := range q.Options {
				if strings.TrimSpace(opt) == "" {
					errs = append(errs, *NewValidationError(
						fmt.Sprintf("%s.options[%d]", field, j), "option text is required", opt))
				}
			}
		}
		if q.Answer < 1 || q.Answer > quiz.OptionCount {
			errs = append(errs, *NewValidationError(field+".answer",
				fmt.Sprintf("answer must be between 1 and %d", quiz.OptionCount), q.Answer))
		}
	}
	return errs
}

func (s *quizService) buildResponse(ctx context.Context, model *models.Quiz) *QuizResponse {
	attemptCount, err := s.repo.Attempt().CountByQuiz(ctx, model.ID)
	if err != nil {
		s.logger.Warn("Failed to count attempts", "quiz_id", model.ID, "error", err)
	}

	return &QuizResponse{
		ID:           model.ID,
		Title:        model.Title,
		ThumbURL:     model.ThumbURL,
		Questions:    quiz.DecodeConfig(model.ConfigJSON),
		CreatedBy:    model.CreatedBy,
		CreatedAt:    model.CreatedAt,
		AttemptCount: attemptCount,
	}
}

func (s *quizService) publishQuizSubmitted(ctx context.Context, quizID uint, userID string, score int) {
	if s.publisher == nil {
		return
	}
	event := events.NewQuizSubmittedEvent(quizID, userID, score)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish quiz submitted event", "quiz_id", quizID, "error", err)
	}
}

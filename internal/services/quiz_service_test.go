package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/phishguard/awareness-service/internal/events"
	"github.com/phishguard/awareness-service/internal/models"
	"github.com/phishguard/awareness-service/internal/quiz"
	"github.com/phishguard/awareness-service/internal/repositories"
	"github.com/phishguard/awareness-service/internal/utils"
)

// MockQuizRepository is a mock implementation of QuizRepository
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) Create(ctx context.Context, q *models.Quiz) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockQuizRepository) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) Update(ctx context.Context, q *models.Quiz) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockQuizRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuizRepository) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Quiz), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuizRepository) GetStats(ctx context.Context, id uint) (*repositories.QuizStats, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.QuizStats), args.Error(1)
}

// MockAttemptRepository is a mock implementation of AttemptRepository
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.QuizAttempt), args.Get(1).(int64), args.Error(2)
}

func (m *MockAttemptRepository) CountByQuiz(ctx context.Context, quizID uint) (int64, error) {
	args := m.Called(ctx, quizID)
	return args.Get(0).(int64), args.Error(1)
}

// MockRepository is a mock implementation of the main Repository interface
type MockRepository struct {
	quizRepo    *MockQuizRepository
	attemptRepo *MockAttemptRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		quizRepo:    &MockQuizRepository{},
		attemptRepo: &MockAttemptRepository{},
	}
}

func (m *MockRepository) Quiz() repositories.QuizRepository         { return m.quizRepo }
func (m *MockRepository) Attempt() repositories.AttemptRepository   { return m.attemptRepo }
func (m *MockRepository) Profile() repositories.ProfileRepository   { return nil }
func (m *MockRepository) Template() repositories.TemplateRepository { return nil }
func (m *MockRepository) Campaign() repositories.CampaignRepository { return nil }
func (m *MockRepository) Event() repositories.EventRepository       { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validQuestions(answer int) []quiz.Question {
	questions := make([]quiz.Question, quiz.QuestionCount)
	for i := range questions {
		questions[i] = quiz.Question{
			Text:    "What should you do with a suspicious link?",
			Options: []string{"Click it", "Report it", "Forward it", "Ignore it"},
			Answer:  answer,
		}
	}
	return questions
}

func TestQuizService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		mockRepo := newMockRepository()
		publisher := events.NewMockPublisher(testLogger())
		service := NewQuizService(mockRepo, publisher, testLogger(), utils.NewValidator())

		mockRepo.quizRepo.On("Create", mock.Anything, mock.MatchedBy(func(q *models.Quiz) bool {
			return q.Title == "Phishing Basics" && len(q.ConfigJSON) > 0
		})).Return(nil)
		mockRepo.attemptRepo.On("CountByQuiz", mock.Anything, mock.Anything).Return(int64(0), nil)

		resp, err := service.Create(ctx, &SaveQuizRequest{
			Title:     "Phishing Basics",
			Questions: validQuestions(2),
		}, "admin-1")

		assert.NoError(t, err)
		assert.NotNil(t, resp)
		assert.Len(t, resp.Questions, quiz.QuestionCount)
		mockRepo.quizRepo.AssertExpectations(t)
	})

	t.Run("missing title rejected", func(t *testing.T) {
		mockRepo := newMockRepository()
		service := NewQuizService(mockRepo, nil, testLogger(), utils.NewValidator())

		resp, err := service.Create(ctx, &SaveQuizRequest{
			Questions: validQuestions(1),
		}, "admin-1")

		assert.Error(t, err)
		assert.Nil(t, resp)
		assert.True(t, IsValidation(err))
		mockRepo.quizRepo.AssertNotCalled(t, "Create")
	})

	t.Run("wrong question count rejected", func(t *testing.T) {
		mockRepo := newMockRepository()
		service := NewQuizService(mockRepo, nil, testLogger(), utils.NewValidator())

		resp, err := service.Create(ctx, &SaveQuizRequest{
			Title:     "Short Quiz",
			Questions: validQuestions(1)[:9],
		}, "admin-1")

		assert.Error(t, err)
		assert.Nil(t, resp)
		assert.True(t, IsValidation(err))
	})

	t.Run("answer out of range rejected", func(t *testing.T) {
		mockRepo := newMockRepository()
		service := NewQuizService(mockRepo, nil, testLogger(), utils.NewValidator())

		questions := validQuestions(1)
		questions[3].Answer = 5

		resp, err := service.Create(ctx, &SaveQuizRequest{
			Title:     "Bad Answer",
			Questions: questions,
		}, "admin-1")

		assert.Error(t, err)
		assert.Nil(t, resp)

		var errs ValidationErrors
		assert.ErrorAs(t, err, &errs)
		assert.Equal(t, "questions[3].answer", errs[0].Field)
	})

	t.Run("empty option rejected", func(t *testing.T) {
		mockRepo := newMockRepository()
		service := NewQuizService(mockRepo, nil, testLogger(), utils.NewValidator())

		questions := validQuestions(1)
		questions[0].Options[2] = "  "

		_, err := service.Create(ctx, &SaveQuizRequest{
			Title:     "Blank Option",
			Questions: questions,
		}, "admin-1")

		assert.True(t, IsValidation(err))
	})
}

func TestQuizService_Submit(t *testing.T) {
	ctx := context.Background()

	storedConfig := func(answer int) []byte {
		raw, err := quiz.MarshalConfig(validQuestions(answer))
		if err != nil {
			t.Fatalf("failed to marshal config: %v", err)
		}
		return raw
	}

	t.Run("perfect score", func(t *testing.T) {
		mockRepo := newMockRepository()
		publisher := events.NewMockPublisher(testLogger())
		service := NewQuizService(mockRepo, publisher, testLogger(), utils.NewValidator())

		mockRepo.quizRepo.On("GetByID", mock.Anything, uint(7)).Return(&models.Quiz{
			ID:         7,
			Title:      "Phishing Basics",
			ConfigJSON: storedConfig(2),
		}, nil)
		mockRepo.attemptRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *models.QuizAttempt) bool {
			return a.QuizID == 7 && a.UserID == "user-1" && a.Score == quiz.QuestionCount
		})).Return(nil)

		// Stored answer 2 means option index 1.
		answers := make(quiz.AnswerSet, quiz.QuestionCount)
		picked := 1
		for i := range answers {
			answers[i] = &picked
		}

		resp, err := service.Submit(ctx, 7, "user-1", answers)

		assert.NoError(t, err)
		assert.Equal(t, quiz.QuestionCount, resp.Score)
		assert.Equal(t, quiz.QuestionCount, resp.Total)
		mockRepo.attemptRepo.AssertExpectations(t)

		published := publisher.Events()
		assert.Len(t, published, 1)
		assert.Equal(t, events.EventQuizSubmitted, published[0].Type)
	})

	t.Run("unanswered questions score zero", func(t *testing.T) {
		mockRepo := newMockRepository()
		service := NewQuizService(mockRepo, nil, testLogger(), utils.NewValidator())

		mockRepo.quizRepo.On("GetByID", mock.Anything, uint(7)).Return(&models.Quiz{
			ID:         7,
			ConfigJSON: storedConfig(1),
		}, nil)
		mockRepo.attemptRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *models.QuizAttempt) bool {
			return a.Score == 0
		})).Return(nil)

		resp, err := service.Submit(ctx, 7, "user-1", make(quiz.AnswerSet, quiz.QuestionCount))

		assert.NoError(t, err)
		assert.Equal(t, 0, resp.Score)
	})

	t.Run("corrupt stored config still grades", func(t *testing.T) {
		mockRepo := newMockRepository()
		service := NewQuizService(mockRepo, nil, testLogger(), utils.NewValidator())

		mockRepo.quizRepo.On("GetByID", mock.Anything, uint(7)).Return(&models.Quiz{
			ID:         7,
			ConfigJSON: []byte("{broken"),
		}, nil)
		mockRepo.attemptRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		resp, err := service.Submit(ctx, 7, "user-1", make(quiz.AnswerSet, quiz.QuestionCount))

		assert.NoError(t, err)
		assert.Equal(t, 0, resp.Score)
	})

	t.Run("quiz not found", func(t *testing.T) {
		mockRepo := newMockRepository()
		service := NewQuizService(mockRepo, nil, testLogger(), utils.NewValidator())

		mockRepo.quizRepo.On("GetByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

		resp, err := service.Submit(ctx, 99, "user-1", make(quiz.AnswerSet, quiz.QuestionCount))

		assert.ErrorIs(t, err, ErrQuizNotFound)
		assert.Nil(t, resp)
		mockRepo.attemptRepo.AssertNotCalled(t, "Create")
	})
}

func TestQuizService_GetStats(t *testing.T) {
	ctx := context.Background()

	t.Run("returns attempt summary", func(t *testing.T) {
		mockRepo := newMockRepository()
		service := NewQuizService(mockRepo, nil, testLogger(), utils.NewValidator())

		mockRepo.quizRepo.On("GetByID", mock.Anything, uint(5)).Return(&models.Quiz{ID: 5}, nil)
		mockRepo.quizRepo.On("GetStats", mock.Anything, uint(5)).Return(&repositories.QuizStats{
			TotalAttempts: 12,
			AverageScore:  7.5,
		}, nil)

		resp, err := service.GetStats(ctx, 5)

		assert.NoError(t, err)
		assert.Equal(t, uint(5), resp.QuizID)
		assert.Equal(t, 12, resp.TotalAttempts)
		assert.Equal(t, 7.5, resp.AverageScore)
		mockRepo.quizRepo.AssertExpectations(t)
	})

	t.Run("missing quiz", func(t *testing.T) {
		mockRepo := newMockRepository()
		service := NewQuizService(mockRepo, nil, testLogger(), utils.NewValidator())

		mockRepo.quizRepo.On("GetByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

		resp, err := service.GetStats(ctx, 99)

		assert.ErrorIs(t, err, ErrQuizNotFound)
		assert.Nil(t, resp)
		mockRepo.quizRepo.AssertNotCalled(t, "GetStats")
	})
}

func TestQuizService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces whole config", func(t *testing.T) {
		mockRepo := newMockRepository()
		service := NewQuizService(mockRepo, nil, testLogger(), utils.NewValidator())

		original, _ := quiz.MarshalConfig(validQuestions(1))
		mockRepo.quizRepo.On("GetByID", mock.Anything, uint(3)).Return(&models.Quiz{
			ID:         3,
			Title:      "Old Title",
			ConfigJSON: original,
		}, nil)
		mockRepo.quizRepo.On("Update", mock.Anything, mock.MatchedBy(func(q *models.Quiz) bool {
			decoded := quiz.DecodeConfig(q.ConfigJSON)
			return q.Title == "New Title" && decoded[0].Answer == 4
		})).Return(nil)
		mockRepo.attemptRepo.On("CountByQuiz", mock.Anything, uint(3)).Return(int64(2), nil)

		resp, err := service.Update(ctx, 3, &SaveQuizRequest{
			Title:     "New Title",
			Questions: validQuestions(4),
		})

		assert.NoError(t, err)
		assert.Equal(t, "New Title", resp.Title)
		assert.Equal(t, int64(2), resp.AttemptCount)
		mockRepo.quizRepo.AssertExpectations(t)
	})
}

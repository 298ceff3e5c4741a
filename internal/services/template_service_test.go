package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/phishguard/awareness-service/internal/models"
	"github.com/phishguard/awareness-service/internal/repositories"
	"github.com/phishguard/awareness-service/internal/utils"
)

// MockTemplateRepository is a mock implementation of TemplateRepository
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) Create(ctx context.Context, template *models.Template) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) GetByID(ctx context.Context, id uint) (*models.Template, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Template), args.Error(1)
}

func (m *MockTemplateRepository) Update(ctx context.Context, template *models.Template) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTemplateRepository) List(ctx context.Context, filters repositories.TemplateFilters) ([]*models.Template, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Template), args.Get(1).(int64), args.Error(2)
}

type templateMockRepository struct {
	MockRepository
	templateRepo *MockTemplateRepository
	campaignRepo *MockCampaignRepository
}

func (m *templateMockRepository) Template() repositories.TemplateRepository {
	return m.templateRepo
}

func (m *templateMockRepository) Campaign() repositories.CampaignRepository {
	return m.campaignRepo
}

// MockCampaignRepository covers the campaign lookups template deletion
// depends on.
type MockCampaignRepository struct {
	mock.Mock
}

func (m *MockCampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	args := m.Called(ctx, campaign)
	return args.Error(0)
}

func (m *MockCampaignRepository) GetByID(ctx context.Context, id uint) (*models.Campaign, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) Update(ctx context.Context, campaign *models.Campaign) error {
	args := m.Called(ctx, campaign)
	return args.Error(0)
}

func (m *MockCampaignRepository) UpdateStatus(ctx context.Context, id uint, status models.CampaignStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockCampaignRepository) List(ctx context.Context, filters repositories.CampaignFilters) ([]*models.Campaign, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Campaign), args.Get(1).(int64), args.Error(2)
}

func (m *MockCampaignRepository) AddRecipients(ctx context.Context, campaignID uint, userIDs []string) error {
	args := m.Called(ctx, campaignID, userIDs)
	return args.Error(0)
}

func (m *MockCampaignRepository) ListRecipients(ctx context.Context, campaignID uint) ([]*models.CampaignRecipient, error) {
	args := m.Called(ctx, campaignID)
	return args.Get(0).([]*models.CampaignRecipient), args.Error(1)
}

func (m *MockCampaignRepository) MarkRecipientSent(ctx context.Context, campaignID uint, userID string, at time.Time) error {
	args := m.Called(ctx, campaignID, userID, at)
	return args.Error(0)
}

func (m *MockCampaignRepository) CountSentRecipients(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCampaignRepository) CountDistinctRecipients(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func newTemplateMockRepository() *templateMockRepository {
	return &templateMockRepository{
		templateRepo: &MockTemplateRepository{},
		campaignRepo: &MockCampaignRepository{},
	}
}

func stringPtr(s string) *string { return &s }

func TestTemplateService_Presets(t *testing.T) {
	service := NewTemplateService(newTemplateMockRepository(), testLogger(), utils.NewValidator())

	presets := service.Presets()
	assert.Len(t, presets, len(models.TemplateCategories()))

	smishing := presets[models.CategorySmishing]
	assert.True(t, smishing.IsSMS)
	assert.Empty(t, smishing.Subject)
	assert.Empty(t, smishing.HTML)
	assert.Contains(t, smishing.Text, "{{action_link}}")

	invoice := presets[models.CategoryFakeInvoice]
	assert.Contains(t, invoice.Subject, "{{invoice_number}}")
	assert.Contains(t, invoice.HTML, "{{company}}")
}

func TestTemplateService_MergeTags(t *testing.T) {
	service := NewTemplateService(newTemplateMockRepository(), testLogger(), utils.NewValidator())

	tags := service.MergeTags()
	assert.Contains(t, tags, "{{name}}")
	assert.Contains(t, tags, "{{action_link}}")
	assert.Len(t, tags, 9)
}

func TestTemplateService_Render(t *testing.T) {
	ctx := context.Background()

	t.Run("substitutes known tags", func(t *testing.T) {
		mockRepo := newTemplateMockRepository()
		service := NewTemplateService(mockRepo, testLogger(), utils.NewValidator())

		mockRepo.templateRepo.On("GetByID", mock.Anything, uint(5)).Return(&models.Template{
			ID:       5,
			Name:     "Invoice Lure",
			Category: models.CategoryFakeInvoice,
			Subject:  stringPtr("Invoice {{invoice_number}} for {{name}}"),
			BodyHTML: stringPtr("<p>Hello {{name}}, pay via {{action_link}}</p>"),
			BodyText: stringPtr("Hello {{name}}"),
		}, nil)

		rendered, err := service.Render(ctx, 5, MergeValues{
			"name":           "Dana",
			"invoice_number": "INV-42",
			"action_link":    "https://landing.example/i/42",
		})

		assert.NoError(t, err)
		assert.Equal(t, "Invoice INV-42 for Dana", rendered.Subject)
		assert.Equal(t, "<p>Hello Dana, pay via https://landing.example/i/42</p>", rendered.BodyHTML)
		assert.Equal(t, "Hello Dana", rendered.BodyText)
	})

	t.Run("unknown tags left intact", func(t *testing.T) {
		mockRepo := newTemplateMockRepository()
		service := NewTemplateService(mockRepo, testLogger(), utils.NewValidator())

		mockRepo.templateRepo.On("GetByID", mock.Anything, uint(5)).Return(&models.Template{
			ID:       5,
			Category: models.CategoryUrgentRequest,
			BodyText: stringPtr("Hi {{name}}, see {{manager_name}}"),
		}, nil)

		rendered, err := service.Render(ctx, 5, MergeValues{"name": "Dana"})

		assert.NoError(t, err)
		assert.Equal(t, "Hi Dana, see {{manager_name}}", rendered.BodyText)
	})

	t.Run("missing template", func(t *testing.T) {
		mockRepo := newTemplateMockRepository()
		service := NewTemplateService(mockRepo, testLogger(), utils.NewValidator())

		mockRepo.templateRepo.On("GetByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

		rendered, err := service.Render(ctx, 99, nil)

		assert.ErrorIs(t, err, ErrTemplateNotFound)
		assert.Nil(t, rendered)
	})
}

func TestTemplateService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("sms template drops email fields", func(t *testing.T) {
		mockRepo := newTemplateMockRepository()
		service := NewTemplateService(mockRepo, testLogger(), utils.NewValidator())

		mockRepo.templateRepo.On("Create", mock.Anything, mock.MatchedBy(func(tmpl *models.Template) bool {
			return tmpl.IsSMS && tmpl.Subject == nil && tmpl.BodyHTML == nil
		})).Return(nil)

		created, err := service.Create(ctx, &SaveTemplateRequest{
			Name:     "Flagged Account SMS",
			Category: models.CategorySmishing,
			Subject:  stringPtr("should be dropped"),
			BodyHTML: stringPtr("<p>dropped</p>"),
			BodyText: stringPtr("{{company}}: verify now {{action_link}}"),
			IsSMS:    true,
		})

		assert.NoError(t, err)
		assert.Nil(t, created.Subject)
		assert.Nil(t, created.BodyHTML)
		mockRepo.templateRepo.AssertExpectations(t)
	})

	t.Run("unknown category rejected", func(t *testing.T) {
		mockRepo := newTemplateMockRepository()
		service := NewTemplateService(mockRepo, testLogger(), utils.NewValidator())

		created, err := service.Create(ctx, &SaveTemplateRequest{
			Name:     "Mystery",
			Category: "Quiz Spam",
		})

		assert.Nil(t, created)
		assert.True(t, IsValidation(err))
		mockRepo.templateRepo.AssertNotCalled(t, "Create")
	})
}

func TestTemplateService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("blocked while in use", func(t *testing.T) {
		mockRepo := newTemplateMockRepository()
		service := NewTemplateService(mockRepo, testLogger(), utils.NewValidator())

		mockRepo.campaignRepo.On("List", mock.Anything, mock.Anything).
			Return([]*models.Campaign{{ID: 1}}, int64(1), nil)

		err := service.Delete(ctx, 5)

		assert.ErrorIs(t, err, ErrTemplateInUse)
		mockRepo.templateRepo.AssertNotCalled(t, "Delete")
	})

	t.Run("deletes unused template", func(t *testing.T) {
		mockRepo := newTemplateMockRepository()
		service := NewTemplateService(mockRepo, testLogger(), utils.NewValidator())

		mockRepo.campaignRepo.On("List", mock.Anything, mock.Anything).
			Return([]*models.Campaign{}, int64(0), nil)
		mockRepo.templateRepo.On("Delete", mock.Anything, uint(5)).Return(nil)

		err := service.Delete(ctx, 5)

		assert.NoError(t, err)
		mockRepo.templateRepo.AssertExpectations(t)
	})
}

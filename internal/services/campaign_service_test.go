package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/phishguard/awareness-service/internal/events"
	"github.com/phishguard/awareness-service/internal/models"
	"github.com/phishguard/awareness-service/internal/repositories"
	"github.com/phishguard/awareness-service/internal/utils"
)

type campaignMockRepository struct {
	MockRepository
	campaignRepo *MockCampaignRepository
}

func (m *campaignMockRepository) Campaign() repositories.CampaignRepository {
	return m.campaignRepo
}

func newCampaignMockRepository() *campaignMockRepository {
	return &campaignMockRepository{
		campaignRepo: &MockCampaignRepository{},
	}
}

func publishedTypes(publisher *events.MockPublisher) []events.EventType {
	published := publisher.Events()
	types := make([]events.EventType, 0, len(published))
	for _, event := range published {
		types = append(types, event.Type)
	}
	return types
}

func TestCampaignService_Launch(t *testing.T) {
	ctx := context.Background()

	t.Run("marks recipients sent and announces the launch", func(t *testing.T) {
		mockRepo := newCampaignMockRepository()
		publisher := events.NewMockPublisher(testLogger())
		service := NewCampaignService(mockRepo, publisher, testLogger(), utils.NewValidator())

		alreadySent := time.Now().Add(-time.Hour)
		mockRepo.campaignRepo.On("GetByID", mock.Anything, uint(1)).Return(&models.Campaign{
			ID:     1,
			Name:   "Q3 Invoice Wave",
			Type:   models.CampaignFakeLogin,
			Status: models.CampaignDraft,
		}, nil)
		mockRepo.campaignRepo.On("ListRecipients", mock.Anything, uint(1)).Return([]*models.CampaignRecipient{
			{CampaignID: 1, UserID: "user-1", SentAt: &alreadySent},
			{CampaignID: 1, UserID: "user-2"},
		}, nil)
		mockRepo.campaignRepo.On("UpdateStatus", mock.Anything, uint(1), models.CampaignRunning).Return(nil)
		mockRepo.campaignRepo.On("MarkRecipientSent", mock.Anything, uint(1), "user-2", mock.Anything).Return(nil)

		err := service.Launch(ctx, 1)

		assert.NoError(t, err)
		mockRepo.campaignRepo.AssertExpectations(t)
		mockRepo.campaignRepo.AssertNotCalled(t, "MarkRecipientSent", mock.Anything, uint(1), "user-1", mock.Anything)

		assert.Equal(t, []events.EventType{events.EventCampaignLaunched}, publishedTypes(publisher))
		assert.Equal(t, "running", publisher.Events()[0].Payload["status"])
	})

	t.Run("no recipients blocks the launch", func(t *testing.T) {
		mockRepo := newCampaignMockRepository()
		publisher := events.NewMockPublisher(testLogger())
		service := NewCampaignService(mockRepo, publisher, testLogger(), utils.NewValidator())

		mockRepo.campaignRepo.On("GetByID", mock.Anything, uint(2)).Return(&models.Campaign{
			ID:     2,
			Status: models.CampaignScheduled,
		}, nil)
		mockRepo.campaignRepo.On("ListRecipients", mock.Anything, uint(2)).
			Return([]*models.CampaignRecipient{}, nil)

		err := service.Launch(ctx, 2)

		assert.ErrorIs(t, err, ErrCampaignNoRecipients)
		mockRepo.campaignRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, publisher.Events())
	})
}

func TestCampaignService_Complete(t *testing.T) {
	ctx := context.Background()

	t.Run("announces completion", func(t *testing.T) {
		mockRepo := newCampaignMockRepository()
		publisher := events.NewMockPublisher(testLogger())
		service := NewCampaignService(mockRepo, publisher, testLogger(), utils.NewValidator())

		mockRepo.campaignRepo.On("GetByID", mock.Anything, uint(3)).Return(&models.Campaign{
			ID:     3,
			Name:   "Q3 Invoice Wave",
			Status: models.CampaignRunning,
		}, nil)
		mockRepo.campaignRepo.On("UpdateStatus", mock.Anything, uint(3), models.CampaignCompleted).Return(nil)

		err := service.Complete(ctx, 3)

		assert.NoError(t, err)
		assert.Equal(t, []events.EventType{events.EventCampaignCompleted}, publishedTypes(publisher))
		assert.Equal(t, "completed", publisher.Events()[0].Payload["status"])
	})

	t.Run("draft cannot complete", func(t *testing.T) {
		mockRepo := newCampaignMockRepository()
		publisher := events.NewMockPublisher(testLogger())
		service := NewCampaignService(mockRepo, publisher, testLogger(), utils.NewValidator())

		mockRepo.campaignRepo.On("GetByID", mock.Anything, uint(4)).Return(&models.Campaign{
			ID:     4,
			Status: models.CampaignDraft,
		}, nil)

		err := service.Complete(ctx, 4)

		assert.ErrorIs(t, err, ErrCampaignInvalidStatus)
		mockRepo.campaignRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, publisher.Events())
	})
}

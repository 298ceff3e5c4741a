package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phishguard/awareness-service/internal/models"
	"github.com/phishguard/awareness-service/internal/repositories"
)

type CampaignPostgreSQL struct {
	db *gorm.DB
}

func NewCampaignPostgreSQL(db *gorm.DB) repositories.CampaignRepository {
	return &CampaignPostgreSQL{db: db}
}

func (c *CampaignPostgreSQL) Create(ctx context.Context, campaign *models.Campaign) error {
	if err := c.db.WithContext(ctx).Create(campaign).Error; err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

func (c *CampaignPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Campaign, error) {
	var campaign models.Campaign
	err := c.db.WithContext(ctx).
		Preload("Template").
		First(&campaign, id).Error
	if err != nil {
		return nil, err
	}

	c.loadCounters(ctx, &campaign)
	return &campaign, nil
}

func (c *CampaignPostgreSQL) Update(ctx context.Context, campaign *models.Campaign) error {
	return c.db.WithContext(ctx).Save(campaign).Error
}

func (c *CampaignPostgreSQL) UpdateStatus(ctx context.Context, id uint, status models.CampaignStatus) error {
	result := c.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (c *CampaignPostgreSQL) List(ctx context.Context, filters repositories.CampaignFilters) ([]*models.Campaign, int64, error) {
	query := c.db.WithContext(ctx).Model(&models.Campaign{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.TemplateID != nil {
		query = query.Where("template_id = ?", *filters.TemplateID)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder,
		filters.Limit, filters.Offset, "created_at", "name")

	var campaigns []*models.Campaign
	if err := query.Preload("Template").Find(&campaigns).Error; err != nil {
		return nil, 0, err
	}

	for _, campaign := range campaigns {
		c.loadCounters(ctx, campaign)
	}
	return campaigns, total, nil
}

// AddRecipients enrolls users into a campaign, skipping ones already
// enrolled.
func (c *CampaignPostgreSQL) AddRecipients(ctx context.Context, campaignID uint, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}

	recipients := make([]models.CampaignRecipient, 0, len(userIDs))
	for _, userID := range userIDs {
		recipients = append(recipients, models.CampaignRecipient{
			CampaignID: campaignID,
			UserID:     userID,
		})
	}

	err := c.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&recipients).Error
	if err != nil {
		return fmt.Errorf("failed to add recipients: %w", err)
	}
	return nil
}

func (c *CampaignPostgreSQL) ListRecipients(ctx context.Context, campaignID uint) ([]*models.CampaignRecipient, error) {
	var recipients []*models.CampaignRecipient
	err := c.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Preload("Profile").
		Preload("Profile.Department").
		Find(&recipients).Error
	return recipients, err
}

func (c *CampaignPostgreSQL) MarkRecipientSent(ctx context.Context, campaignID uint, userID string, at time.Time) error {
	result := c.db.WithContext(ctx).
		Model(&models.CampaignRecipient{}).
		Where("campaign_id = ? AND user_id = ?", campaignID, userID).
		Update("sent_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (c *CampaignPostgreSQL) CountSentRecipients(ctx context.Context) (int64, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&models.CampaignRecipient{}).
		Where("sent_at IS NOT NULL").
		Count(&count).Error
	return count, err
}

// CountDistinctRecipients counts unique users enrolled across all
// campaigns, the "employees tested" dashboard figure.
func (c *CampaignPostgreSQL) CountDistinctRecipients(ctx context.Context) (int64, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&models.CampaignRecipient{}).
		Distinct("user_id").
		Count(&count).Error
	return count, err
}

func (c *CampaignPostgreSQL) loadCounters(ctx context.Context, campaign *models.Campaign) {
	var sent, clicked, reported int64

	c.db.WithContext(ctx).
		Model(&models.CampaignRecipient{}).
		Where("campaign_id = ? AND sent_at IS NOT NULL", campaign.ID).
		Count(&sent)
	c.db.WithContext(ctx).
		Model(&models.SimEvent{}).
		Where("campaign_id = ? AND type = ?", campaign.ID, models.EventClicked).
		Count(&clicked)
	c.db.WithContext(ctx).
		Model(&models.SimEvent{}).
		Where("campaign_id = ? AND type = ?", campaign.ID, models.EventReported).
		Count(&reported)

	campaign.SentCount = int(sent)
	campaign.ClickedCount = int(clicked)
	campaign.ReportedCount = int(reported)
}

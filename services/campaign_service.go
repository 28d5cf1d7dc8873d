package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"onethy/models"
	"onethy/utils"
)

var campaignStatuses = []string{models.CampaignDraft, models.CampaignActive, models.CampaignPaused, models.CampaignCompleted}

type CampaignService struct {
	db *gorm.DB
}

func NewCampaignService(db *gorm.DB) *CampaignService {
	return &CampaignService{db: db}
}

type CreateCampaignInput struct {
	Name          string     `json:"name" validate:"required"`
	Description   string     `json:"description"`
	Message       string     `json:"message"`
	ChannelID     *uint      `json:"channelId"`
	ScheduledAt   *time.Time `json:"scheduledAt"`
	TotalMessages int        `json:"totalMessages" validate:"gte=0"`
}

type UpdateCampaignInput struct {
	Name          *string                   `json:"name"`
	Description   *string                   `json:"description"`
	Message       *string                   `json:"message"`
	Status        *string                   `json:"status"`
	ChannelID     utils.Nullable[uint]      `json:"channelId"`
	ScheduledAt   utils.Nullable[time.Time] `json:"scheduledAt"`
	TotalMessages *int                      `json:"totalMessages"`
	SentMessages  *int                      `json:"sentMessages"`
	DeliveryRate  *float64                  `json:"deliveryRate"`
	OpenRate      *float64                  `json:"openRate"`
}

func findCampaign(tx *gorm.DB, t Tenant, id uint) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := first(tx, t, "campaigns", &campaign, id, "campaign"); err != nil {
		return nil, err
	}
	return &campaign, nil
}

func checkRate(field string, rate float64) error {
	if rate < 0 || rate > 100 {
		return invalid(field, field+" must be between 0 and 100")
	}
	return nil
}

func (s *CampaignService) List(ctx context.Context, t Tenant, status string, p Page) (List[models.Campaign], error) {
	p = p.Normalize()
	query := s.db.WithContext(ctx).Model(&models.Campaign{}).Scopes(t.owns("campaigns"))
	if status != "" {
		if err := mustBeOneOf("status", status, campaignStatuses); err != nil {
			return List[models.Campaign]{}, err
		}
		query = query.Where("status = ?", status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return List[models.Campaign]{}, err
	}
	var items []models.Campaign
	if err := query.Order("created_at DESC, id DESC").Limit(p.Limit).Offset(p.Offset).Find(&items).Error; err != nil {
		return List[models.Campaign]{}, err
	}
	return newList(items, total, p), nil
}

func (s *CampaignService) Get(ctx context.Context, t Tenant, id uint) (*models.Campaign, error) {
	return findCampaign(s.db.WithContext(ctx), t, id)
}

func (s *CampaignService) Create(ctx context.Context, t Tenant, in CreateCampaignInput) (*models.Campaign, error) {
	campaign := models.Campaign{
		UserID:        t.ID,
		ChannelID:     in.ChannelID,
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Message:       in.Message,
		Status:        models.CampaignDraft,
		ScheduledAt:   in.ScheduledAt,
		TotalMessages: in.TotalMessages,
	}
	if campaign.Name == "" {
		return nil, invalid("name", "name is required")
	}
	if campaign.TotalMessages < 0 {
		return nil, invalid("totalMessages", "totalMessages cannot be negative")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.ChannelID != nil {
			if _, err := findChannel(tx, t, *in.ChannelID); err != nil {
				return err
			}
		}
		return tx.Create(&campaign).Error
	})
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// Update applies a partial update. Moving to active stamps StartedAt once and
// moving to completed stamps CompletedAt.
func (s *CampaignService) Update(ctx context.Context, t Tenant, id uint, in UpdateCampaignInput) (*models.Campaign, error) {
	var campaign *models.Campaign
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if campaign, err = findCampaign(tx, t, id); err != nil {
			return err
		}

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return invalid("name", "name cannot be empty")
			}
			campaign.Name = name
		}
		if in.Description != nil {
			campaign.Description = *in.Description
		}
		if in.Message != nil {
			campaign.Message = *in.Message
		}
		if in.ChannelID.Set {
			if in.ChannelID.Value != nil {
				if _, err := findChannel(tx, t, *in.ChannelID.Value); err != nil {
					return err
				}
			}
			campaign.ChannelID = in.ChannelID.Value
		}
		if in.ScheduledAt.Set {
			campaign.ScheduledAt = in.ScheduledAt.Value
		}
		if in.Status != nil {
			if err := mustBeOneOf("status", *in.Status, campaignStatuses); err != nil {
				return err
			}
			now := time.Now()
			switch *in.Status {
			case models.CampaignActive:
				if campaign.StartedAt == nil {
					campaign.StartedAt = &now
				}
			case models.CampaignCompleted:
				campaign.CompletedAt = &now
			}
			campaign.Status = *in.Status
		}
		if in.TotalMessages != nil {
			if *in.TotalMessages < 0 {
				return invalid("totalMessages", "totalMessages cannot be negative")
			}
			campaign.TotalMessages = *in.TotalMessages
		}
		if in.SentMessages != nil {
			if *in.SentMessages < 0 {
				return invalid("sentMessages", "sentMessages cannot be negative")
			}
			campaign.SentMessages = *in.SentMessages
		}
		if in.DeliveryRate != nil {
			if err := checkRate("deliveryRate", *in.DeliveryRate); err != nil {
				return err
			}
			campaign.DeliveryRate = *in.DeliveryRate
		}
		if in.OpenRate != nil {
			if err := checkRate("openRate", *in.OpenRate); err != nil {
				return err
			}
			campaign.OpenRate = *in.OpenRate
		}
		return tx.Save(campaign).Error
	})
	if err != nil {
		return nil, err
	}
	return campaign, nil
}

func (s *CampaignService) Delete(ctx context.Context, t Tenant, id uint) error {
	db := s.db.WithContext(ctx)
	campaign, err := findCampaign(db, t, id)
	if err != nil {
		return err
	}
	return db.Delete(campaign).Error
}

// ActivateDue starts every draft campaign whose schedule has passed, across
// all tenants. It returns the number of campaigns started.
func (s *CampaignService) ActivateDue(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Campaign{}).
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", models.CampaignDraft, now).
		Updates(map[string]interface{}{
			"status":     models.CampaignActive,
			"started_at": now,
		})
	return result.RowsAffected, result.Error
}

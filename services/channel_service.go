package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"onethy/models"
	"onethy/utils"
)

var channelStatuses = []string{models.ChannelActive, models.ChannelConnecting, models.ChannelDisconnected, models.ChannelError}

type ChannelService struct {
	db *gorm.DB
}

func NewChannelService(db *gorm.DB) *ChannelService {
	return &ChannelService{db: db}
}

type CreateChannelInput struct {
	Name     string            `json:"name" validate:"required"`
	Type     string            `json:"type"`
	Phone    string            `json:"phone"`
	Config   map[string]string `json:"config"`
	APIToken string            `json:"apiToken"`
}

type UpdateChannelInput struct {
	Name     *string            `json:"name"`
	Status   *string            `json:"status"`
	Phone    *string            `json:"phone"`
	Config   *map[string]string `json:"config"`
	APIToken *string            `json:"apiToken"`
}

func findChannel(tx *gorm.DB, t Tenant, id uint) (*models.Channel, error) {
	var channel models.Channel
	if err := first(tx, t, "channels", &channel, id, "channel"); err != nil {
		return nil, err
	}
	return &channel, nil
}

func setAPIToken(channel *models.Channel, token string) error {
	sealed, err := utils.Encrypt(strings.TrimSpace(token))
	if err != nil {
		return err
	}
	channel.APIToken = sealed
	channel.HasAPIToken = sealed != ""
	return nil
}

// APIToken returns the decrypted provider token for the WhatsApp bridge.
func (s *ChannelService) APIToken(ctx context.Context, t Tenant, id uint) (string, error) {
	channel, err := findChannel(s.db.WithContext(ctx), t, id)
	if err != nil {
		return "", err
	}
	return utils.Decrypt(channel.APIToken)
}

func (s *ChannelService) List(ctx context.Context, t Tenant) ([]models.Channel, error) {
	channels := []models.Channel{}
	err := s.db.WithContext(ctx).Scopes(t.owns("channels")).Order("name ASC, id ASC").Find(&channels).Error
	return channels, err
}

func (s *ChannelService) Get(ctx context.Context, t Tenant, id uint) (*models.Channel, error) {
	return findChannel(s.db.WithContext(ctx), t, id)
}

// Create registers a channel. New channels start disconnected until the
// WhatsApp bridge reports otherwise.
func (s *ChannelService) Create(ctx context.Context, t Tenant, in CreateChannelInput) (*models.Channel, error) {
	channel := models.Channel{
		UserID: t.ID,
		Name:   strings.TrimSpace(in.Name),
		Type:   strings.TrimSpace(in.Type),
		Status: models.ChannelDisconnected,
		Phone:  strings.TrimSpace(in.Phone),
		Config: in.Config,
	}
	if channel.Name == "" {
		return nil, invalid("name", "name is required")
	}
	if channel.Type == "" {
		channel.Type = "whatsapp"
	}
	if channel.Config == nil {
		channel.Config = map[string]string{}
	}
	if err := setAPIToken(&channel, in.APIToken); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&channel).Error; err != nil {
		return nil, err
	}
	return &channel, nil
}

func (s *ChannelService) Update(ctx context.Context, t Tenant, id uint, in UpdateChannelInput) (*models.Channel, error) {
	db := s.db.WithContext(ctx)
	channel, err := findChannel(db, t, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, invalid("name", "name cannot be empty")
		}
		channel.Name = name
	}
	if in.Status != nil {
		if err := mustBeOneOf("status", *in.Status, channelStatuses); err != nil {
			return nil, err
		}
		channel.Status = *in.Status
	}
	if in.Phone != nil {
		channel.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Config != nil {
		channel.Config = *in.Config
	}
	if in.APIToken != nil {
		if err := setAPIToken(channel, *in.APIToken); err != nil {
			return nil, err
		}
	}
	if err := db.Save(channel).Error; err != nil {
		return nil, err
	}
	return channel, nil
}

// Delete removes a channel. Conversations and campaigns that used it keep
// their history with the channel cleared.
func (s *ChannelService) Delete(ctx context.Context, t Tenant, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		channel, err := findChannel(tx, t, id)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.Conversation{}).Where("channel_id = ?", channel.ID).Update("channel_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Campaign{}).Where("channel_id = ?", channel.ID).Update("channel_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(channel).Error
	})
}

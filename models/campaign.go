package models

import "time"

const (
	CampaignDraft     = "draft"
	CampaignActive    = "active"
	CampaignPaused    = "paused"
	CampaignCompleted = "completed"
)

// Campaign represents a bulk-send job
type Campaign struct {
	Model
	UserID    uint  `gorm:"not null;index" json:"userId"`
	ChannelID *uint `gorm:"index" json:"channelId"`

	// Campaign details
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Message     string `gorm:"type:text" json:"message"`

	// Scheduling
	Status      string     `gorm:"not null;default:'draft';index" json:"status"` // draft, active, paused, completed
	ScheduledAt *time.Time `json:"scheduledAt"`
	StartedAt   *time.Time `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt"`

	// Statistics (denormalized for performance)
	TotalMessages int     `gorm:"not null;default:0" json:"totalMessages"`
	SentMessages  int     `gorm:"not null;default:0" json:"sentMessages"`
	DeliveryRate  float64 `gorm:"not null;default:0" json:"deliveryRate"` // percent
	OpenRate      float64 `gorm:"not null;default:0" json:"openRate"`     // percent
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Model replaces gorm.Model: rows are hard deleted.
type Model struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AutoMigrate creates or updates every table of the schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Plan{},
		&Subscription{},
		&Channel{},
		&Team{},
		&TeamMember{},
		&Contact{},
		&ContactTag{},
		&ContactAttribute{},
		&Conversation{},
		&ConversationParticipant{},
		&ConversationNote{},
		&Message{},
		&Macro{},
		&Campaign{},
		&SupportTicket{},
	)
}

// CreateDefaultPlans seeds the plan catalogue; existing plans are left untouched.
func CreateDefaultPlans(db *gorm.DB) error {
	defaultPlans := []Plan{
		{
			Name:        "free",
			Description: "One WhatsApp number and a single agent",
			PriceCents:  0,
			Interval:    "monthly",
			MaxChannels: 1,
			MaxAgents:   1,
			Features:    map[string]bool{"inbox": true, "campaigns": false, "macros": true},
			IsActive:    true,
		},
		{
			Name:        "starter",
			Description: "Small teams sharing one inbox",
			PriceCents:  9900,
			Interval:    "monthly",
			MaxChannels: 2,
			MaxAgents:   3,
			Features:    map[string]bool{"inbox": true, "campaigns": true, "macros": true},
			IsActive:    true,
		},
		{
			Name:        "pro",
			Description: "Teams, routing and campaigns",
			PriceCents:  24900,
			Interval:    "monthly",
			MaxChannels: 5,
			MaxAgents:   10,
			Features:    map[string]bool{"inbox": true, "campaigns": true, "macros": true, "teams": true},
			IsActive:    true,
		},
		{
			Name:        "enterprise",
			Description: "Custom plan for high-volume operations",
			PriceCents:  99900,
			Interval:    "monthly",
			MaxChannels: 50,
			MaxAgents:   100,
			Features:    map[string]bool{"inbox": true, "campaigns": true, "macros": true, "teams": true, "api": true},
			IsActive:    true,
		},
	}
	for _, plan := range defaultPlans {
		if err := db.FirstOrCreate(&plan, "name = ?", plan.Name).Error; err != nil {
			return err
		}
	}
	return nil
}

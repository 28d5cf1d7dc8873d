package models

import "time"

const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
	SubscriptionPending   = "pending"
)

// Plan represents a pricing tier
type Plan struct {
	Model
	Name        string `gorm:"not null;uniqueIndex" json:"name"` // free, starter, pro, enterprise
	Description string `json:"description"`

	PriceCents int    `gorm:"not null" json:"priceCents"`
	Currency   string `gorm:"not null;default:'BRL'" json:"currency"`
	Interval   string `gorm:"not null;default:'monthly'" json:"interval"` // monthly, yearly

	// Limits
	MaxChannels int `gorm:"not null;default:1" json:"maxChannels"`
	MaxAgents   int `gorm:"not null;default:1" json:"maxAgents"`

	Features map[string]bool `gorm:"type:text;serializer:json" json:"features"`
	IsActive bool            `gorm:"default:true" json:"isActive"`
}

// Subscription links a tenant to a plan
type Subscription struct {
	Model
	UserID uint `gorm:"not null;index" json:"userId"`
	PlanID uint `gorm:"not null;index" json:"planId"`

	Status      string     `gorm:"not null;default:'pending';index" json:"status"` // active, cancelled, pending
	ExpiresAt   *time.Time `json:"expiresAt"`
	CancelledAt *time.Time `json:"cancelledAt"`

	// Relations
	Plan *Plan `json:"plan,omitempty"`
}

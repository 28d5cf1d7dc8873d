package models

import "gorm.io/gorm"

const (
	ChannelActive       = "active"
	ChannelConnecting   = "connecting"
	ChannelDisconnected = "disconnected"
	ChannelError        = "error"
)

// Channel represents a messaging endpoint such as a WhatsApp number
type Channel struct {
	Model
	UserID uint `gorm:"not null;index" json:"userId"`

	Name   string `gorm:"not null" json:"name"`
	Type   string `gorm:"not null;default:'whatsapp'" json:"type"`       // whatsapp, email, ...
	Status string `gorm:"not null;default:'disconnected'" json:"status"` // active, connecting, disconnected, error
	Phone  string `json:"phone"`

	// Provider specific settings (instance name, webhook url, ...)
	Config map[string]string `gorm:"type:text;serializer:json" json:"config"`

	// Provider API token, encrypted at rest and never serialized
	APIToken    string `gorm:"type:text" json:"-"`
	HasAPIToken bool   `gorm:"-" json:"hasApiToken"`
}

func (c *Channel) AfterFind(tx *gorm.DB) error {
	c.HasAPIToken = c.APIToken != ""
	if c.Config == nil {
		c.Config = map[string]string{}
	}
	return nil
}

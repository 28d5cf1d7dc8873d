package models

import "time"

const (
	MessageSent      = "sent"
	MessageDelivered = "delivered"
	MessageReceived  = "received"
	MessageRead      = "read"
	MessageFailed    = "failed"

	MessageText = "text"
)

// Message belongs to one conversation. Only Status changes after creation.
type Message struct {
	Model
	ConversationID uint      `gorm:"not null;index" json:"conversationId"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	Type           string    `gorm:"not null;default:'text'" json:"type"` // text, image, audio, video, document
	FromMe         bool      `gorm:"not null" json:"fromMe"`
	Status         string    `gorm:"not null;index" json:"status"` // sent, delivered, received, read, failed
	Timestamp      time.Time `gorm:"not null;index" json:"timestamp"`

	// ExternalID is the id handed to the WhatsApp bridge for delivery receipts.
	ExternalID string `gorm:"index" json:"externalId"`
	SenderID   *uint  `json:"senderId,omitempty"` // agent who sent it, nil for inbound
}

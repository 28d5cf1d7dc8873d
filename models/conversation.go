package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ConversationOpen     = "open"
	ConversationPending  = "pending"
	ConversationResolved = "resolved"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Conversation is a thread of messages between one contact and the business
type Conversation struct {
	Model
	UserID    uint  `gorm:"not null;index" json:"userId"`
	ContactID uint  `gorm:"not null;index" json:"contactId"`
	ChannelID *uint `gorm:"index" json:"channelId"`

	Status   string `gorm:"not null;default:'open';index" json:"status"` // open, pending, resolved
	Priority string `gorm:"not null;default:'medium'" json:"priority"`   // low, medium, high

	// Cached from the latest message
	UnreadCount  int       `gorm:"not null;default:0" json:"unreadCount"`
	LastMessage  string    `gorm:"type:text" json:"lastMessage"`
	LastActivity time.Time `gorm:"index" json:"lastActivity"`

	AssignedAgentID *uint    `gorm:"index" json:"assignedAgentId"`
	AssignedTeamID  *uint    `gorm:"index" json:"assignedTeamId"`
	Tags            []string `gorm:"type:text;serializer:json" json:"tags"`

	// Relations
	Contact       *Contact                  `json:"contact,omitempty"`
	Channel       *Channel                  `json:"channel,omitempty"`
	AssignedAgent *User                     `gorm:"foreignKey:AssignedAgentID" json:"assignedAgent,omitempty"`
	AssignedTeam  *Team                     `gorm:"foreignKey:AssignedTeamID" json:"assignedTeam,omitempty"`
	Participants  []ConversationParticipant `gorm:"foreignKey:ConversationID" json:"participants,omitempty"`
}

func (c *Conversation) AfterFind(tx *gorm.DB) error {
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return nil
}

// ConversationParticipant records an agent's involvement in a conversation
type ConversationParticipant struct {
	Model
	ConversationID uint   `gorm:"not null;uniqueIndex:idx_participants_conversation_user" json:"conversationId"`
	UserID         uint   `gorm:"not null;uniqueIndex:idx_participants_conversation_user" json:"userId"`
	Role           string `gorm:"not null;default:'agent'" json:"role"`
}

// ConversationNote is an internal note left by an agent on a conversation
type ConversationNote struct {
	Model
	UserID         uint   `gorm:"not null;index" json:"userId"`
	ConversationID uint   `gorm:"not null;index" json:"conversationId"`
	AuthorID       uint   `gorm:"not null;index" json:"authorId"`
	Content        string `gorm:"type:text;not null" json:"content"`
	IsPrivate      bool   `gorm:"not null" json:"isPrivate"` // visible to its author only

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ContactActive   = "active"
	ContactInactive = "inactive"
	ContactBlocked  = "blocked"

	SourceManual   = "manual"
	SourceImport   = "import"
	SourceWhatsApp = "whatsapp"
)

// Contact represents a person the business talks to
type Contact struct {
	Model
	UserID uint `gorm:"not null;uniqueIndex:idx_contacts_user_phone" json:"userId"`

	Name    string `gorm:"not null" json:"name"`
	Phone   string `gorm:"not null;uniqueIndex:idx_contacts_user_phone" json:"phone"`
	Email   string `json:"email"`
	Company string `json:"company"`

	// Status
	Status string `gorm:"not null;default:'active';index" json:"status"` // active, inactive, blocked
	Source string `gorm:"not null;default:'manual'" json:"source"`       // manual, import, whatsapp

	// Statistics (denormalized)
	TotalMessages int        `gorm:"not null;default:0" json:"totalMessages"`
	LastMessageAt *time.Time `json:"lastMessageAt"`

	// Tags is filled from TagRows after every load.
	Tags []string `gorm:"-" json:"tags"`

	// Relations
	TagRows    []ContactTag       `gorm:"foreignKey:ContactID" json:"-"`
	Attributes []ContactAttribute `gorm:"foreignKey:ContactID" json:"attributes,omitempty"`
}

func (c *Contact) AfterFind(tx *gorm.DB) error {
	c.Tags = make([]string, 0, len(c.TagRows))
	for _, row := range c.TagRows {
		c.Tags = append(c.Tags, row.Tag)
	}
	return nil
}

// ContactTag represents tags for contacts (normalized)
type ContactTag struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ContactID uint   `gorm:"not null;uniqueIndex:idx_contact_tags_contact_tag" json:"contactId"`
	Tag       string `gorm:"not null;uniqueIndex:idx_contact_tags_contact_tag;index" json:"tag"`
}

// NewContactTags builds tag rows for a deduplicated tag set.
func NewContactTags(tags []string) []ContactTag {
	rows := make([]ContactTag, 0, len(tags))
	for _, tag := range tags {
		rows = append(rows, ContactTag{Tag: tag})
	}
	return rows
}

// ContactAttribute is a custom (name, value, type) triple attached to a contact
type ContactAttribute struct {
	Model
	ContactID uint   `gorm:"not null;uniqueIndex:idx_contact_attributes_contact_name" json:"contactId"`
	Name      string `gorm:"not null;uniqueIndex:idx_contact_attributes_contact_name" json:"name"`
	Value     string `gorm:"type:text" json:"value"`
	Type      string `gorm:"not null;default:'text'" json:"type"` // text, number, date, boolean
}

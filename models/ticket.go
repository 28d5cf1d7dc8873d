package models

const (
	TicketOpen     = "open"
	TicketPending  = "pending"
	TicketResolved = "resolved"
)

// SupportTicket is an issue raised by a tenant
type SupportTicket struct {
	Model
	UserID uint `gorm:"not null;index" json:"userId"`

	Subject     string `gorm:"not null" json:"subject"`
	Description string `gorm:"type:text" json:"description"`
	Status      string `gorm:"not null;default:'open';index" json:"status"` // open, pending, resolved
	Priority    string `gorm:"not null;default:'medium'" json:"priority"`   // low, medium, high
	Category    string `gorm:"not null;default:'general'" json:"category"`
}

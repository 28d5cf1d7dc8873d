package models

const (
	RoleOwner = "owner"
	RoleAgent = "agent"
)

// User is an account. A user without an owner is a tenant; agents point at
// the tenant that created them through OwnerID.
type User struct {
	Model

	// Authentication fields
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	TokenVersion int    `gorm:"not null;default:0" json:"-"`

	// Profile information
	Name    string  `json:"name"`
	Company *string `json:"company,omitempty"`

	// Account status
	Role     string `gorm:"not null;default:'owner'" json:"role"` // owner, agent
	IsActive bool   `gorm:"default:true" json:"isActive"`

	OwnerID *uint `gorm:"index" json:"ownerId,omitempty"`
}

// TenantID returns the id every row owned by this user's account is filed under.
func (u *User) TenantID() uint {
	if u.OwnerID != nil {
		return *u.OwnerID
	}
	return u.ID
}

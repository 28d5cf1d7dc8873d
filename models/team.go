package models

// Team represents a group of agents that conversations can be routed to
type Team struct {
	Model
	UserID      uint   `gorm:"not null;index" json:"userId"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Color       string `gorm:"not null;default:'#25D366'" json:"color"`

	// Relations
	Members []TeamMember `gorm:"foreignKey:TeamID" json:"members"`
}

// TeamMember represents team members and their roles
type TeamMember struct {
	Model
	TeamID uint   `gorm:"not null;uniqueIndex:idx_team_members_team_user" json:"teamId"`
	UserID uint   `gorm:"not null;uniqueIndex:idx_team_members_team_user" json:"userId"`
	Role   string `gorm:"not null;default:'member'" json:"role"` // lead, member

	// Relations
	User *User `json:"user,omitempty"`
}

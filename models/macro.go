package models

// Macro is a canned response, optionally triggered by a slash shortcut
type Macro struct {
	Model
	UserID uint `gorm:"not null;index" json:"userId"`

	Name       string `gorm:"not null" json:"name"`
	Content    string `gorm:"type:text;not null" json:"content"`
	Shortcut   string `gorm:"index" json:"shortcut"`
	UsageCount int    `gorm:"not null;default:0" json:"usageCount"`
}

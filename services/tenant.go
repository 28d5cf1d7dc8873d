package services

import (
	"errors"

	"gorm.io/gorm"

	"onethy/models"
)

// Tenant identifies the account a request acts on and the user acting.
// Every service method takes one, so no query can skip the ownership filter.
type Tenant struct {
	ID     uint // owning account, stored as user_id on every row
	UserID uint // authenticated user (the owner or one of its agents)
}

// TenantOf derives the tenant handle for an authenticated user.
func TenantOf(user *models.User) Tenant {
	return Tenant{ID: user.TenantID(), UserID: user.ID}
}

// IsOwner reports whether the acting user is the account owner.
func (t Tenant) IsOwner() bool {
	return t.ID == t.UserID
}

// owns restricts a query to rows of the tenant in the given table.
func (t Tenant) owns(table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(table+".user_id = ?", t.ID)
	}
}

// first loads one tenant-owned row by id, mapping a miss to ErrNotFound.
func first(tx *gorm.DB, t Tenant, table string, dest interface{}, id uint, entity string) error {
	err := tx.Scopes(t.owns(table)).Where(table+".id = ?", id).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity)
	}
	return err
}

// isMember reports whether userID is the tenant owner or one of its agents.
func isMember(tx *gorm.DB, t Tenant, userID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.User{}).
		Where("id = ? AND (id = ? OR owner_id = ?)", userID, t.ID, t.ID).
		Count(&count).Error
	return count > 0, err
}

package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"onethy/config"
	"onethy/models"
)

var dbSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	config.AppConfig.EncryptionKey = "test-key"
	dsn := fmt.Sprintf("file:services_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newOwner(t *testing.T, db *gorm.DB, email string) Tenant {
	t.Helper()
	user := models.User{Email: email, PasswordHash: "x", Name: email, Role: models.RoleOwner, IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create owner: %v", err)
	}
	return TenantOf(&user)
}

func newAgent(t *testing.T, db *gorm.DB, owner Tenant, email string) Tenant {
	t.Helper()
	ownerID := owner.ID
	user := models.User{Email: email, PasswordHash: "x", Name: email, Role: models.RoleAgent, IsActive: true, OwnerID: &ownerID}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create agent: %v", err)
	}
	return TenantOf(&user)
}

func newContact(t *testing.T, db *gorm.DB, tenant Tenant, name, phone string, tags ...string) *models.Contact {
	t.Helper()
	contact, err := NewContactService(db).Create(context.Background(), tenant, CreateContactInput{
		Name:  name,
		Phone: phone,
		Tags:  tags,
	})
	if err != nil {
		t.Fatalf("create contact: %v", err)
	}
	return contact
}

func newConversation(t *testing.T, db *gorm.DB, tenant Tenant, contactID uint) *models.Conversation {
	t.Helper()
	conv, err := NewConversationService(db).Create(context.Background(), tenant, CreateConversationInput{ContactID: contactID})
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	return conv
}

func reloadConversation(t *testing.T, db *gorm.DB, id uint) models.Conversation {
	t.Helper()
	var conv models.Conversation
	if err := db.First(&conv, id).Error; err != nil {
		t.Fatalf("reload conversation: %v", err)
	}
	return conv
}

func assertNotFound(t *testing.T, err error) {
	t.Helper()
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func assertValidation(t *testing.T, err error, field string) {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError on %s, got %v", field, err)
	}
	if verr.Field != field {
		t.Fatalf("expected ValidationError on %s, got field %s", field, verr.Field)
	}
}

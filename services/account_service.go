package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"onethy/models"
	"onethy/utils"
)

const minPasswordLength = 8

// AccountService covers registration, login and the agents of an account.
type AccountService struct {
	db *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Company  string `json:"company"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateAgentInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

func (s *AccountService) newUser(tx *gorm.DB, name, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if strings.TrimSpace(name) == "" {
		return nil, invalid("name", "name is required")
	}
	if !utils.IsValidEmail(email) {
		return nil, invalid("email", "email must be a valid email address")
	}
	if len(password) < minPasswordLength {
		return nil, invalid("password", "password must be at least 8 characters")
	}

	var count int64
	if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflict("email %s is already registered", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		IsActive:     true,
	}, nil
}

// Register creates a new account owner.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	db := s.db.WithContext(ctx)
	user, err := s.newUser(db, in.Name, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	user.Role = models.RoleOwner
	if company := strings.TrimSpace(in.Company); company != "" {
		user.Company = &company
	}
	if err := db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks credentials. Unknown emails, wrong passwords and disabled
// users all yield ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(in.Email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// Me reloads the acting user.
func (s *AccountService) Me(ctx context.Context, t Tenant) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, t.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("user")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword replaces the acting user's password and bumps the token
// version so previously issued tokens stop working.
func (s *AccountService) ChangePassword(ctx context.Context, t Tenant, in ChangePasswordInput) error {
	user, err := s.Me(ctx, t)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return invalid("currentPassword", "current password is incorrect")
	}
	if len(in.NewPassword) < minPasswordLength {
		return invalid("newPassword", "newPassword must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"password_hash": string(hash),
		"token_version": gorm.Expr("token_version + ?", 1),
	}).Error
}

// ListAgents returns the owner and every agent of the account.
func (s *AccountService) ListAgents(ctx context.Context, t Tenant) ([]models.User, error) {
	users := []models.User{}
	err := s.db.WithContext(ctx).
		Where("id = ? OR owner_id = ?", t.ID, t.ID).
		Order("id ASC").
		Find(&users).Error
	return users, err
}

// CreateAgent adds an agent to the account. Only the owner may do this.
func (s *AccountService) CreateAgent(ctx context.Context, t Tenant, in CreateAgentInput) (*models.User, error) {
	if !t.IsOwner() {
		return nil, ErrForbidden
	}
	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if user, err = s.newUser(tx, in.Name, in.Email, in.Password); err != nil {
			return err
		}
		if err := checkAgentLimit(tx, t); err != nil {
			return err
		}
		ownerID := t.ID
		user.Role = models.RoleAgent
		user.OwnerID = &ownerID
		return tx.Create(user).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// checkAgentLimit enforces the MaxAgents of the tenant's active plan. Accounts
// without an active subscription are not limited.
func checkAgentLimit(tx *gorm.DB, t Tenant) error {
	var sub models.Subscription
	err := tx.Preload("Plan").
		Where("user_id = ? AND status = ?", t.ID, models.SubscriptionActive).
		Order("created_at DESC, id DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if sub.Plan == nil || sub.Plan.MaxAgents <= 0 {
		return nil
	}

	var agents int64
	if err := tx.Model(&models.User{}).Where("id = ? OR owner_id = ?", t.ID, t.ID).Count(&agents).Error; err != nil {
		return err
	}
	if agents >= int64(sub.Plan.MaxAgents) {
		return conflict("plan %s allows at most %d agents", sub.Plan.Name, sub.Plan.MaxAgents)
	}
	return nil
}

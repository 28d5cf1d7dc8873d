package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"onethy/middleware"
	"onethy/models"
	"onethy/services"
	"onethy/utils"
)

type AuthController struct {
	Accounts *services.AccountService
	Logger   *logrus.Entry
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{
		Accounts: services.NewAccountService(db),
		Logger:   utils.Logger("auth"),
	}
}

type AuthResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	User        *models.User `json:"user"`
}

func (ac *AuthController) issueToken(c *fiber.Ctx, status int, user *models.User) error {
	token, expiresAt, err := utils.GenerateJWTToken(user)
	if err != nil {
		return respondError(c, ac.Logger, err)
	}
	return c.Status(status).JSON(AuthResponse{AccessToken: token, ExpiresAt: expiresAt, User: user})
}

// Register creates an account owner and logs it in.
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, ac.Logger, err)
	}

	user, err := ac.Accounts.Register(c.UserContext(), req)
	if err != nil {
		return respondError(c, ac.Logger, err)
	}

	utils.LogEvent("user_registered", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return ac.issueToken(c, fiber.StatusCreated, user)
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, ac.Logger, err)
	}

	user, err := ac.Accounts.Login(c.UserContext(), req)
	if err != nil {
		ac.Logger.WithField("ip", c.IP()).Warn("Failed login attempt")
		return respondError(c, ac.Logger, err)
	}
	return ac.issueToken(c, fiber.StatusOK, user)
}

// GetCurrentUser returns the authenticated user.
func (ac *AuthController) GetCurrentUser(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentUser(c))
}

// ChangePassword replaces the password; tokens issued before stop working.
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	var req services.ChangePasswordInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, ac.Logger, err)
	}
	if err := ac.Accounts.ChangePassword(c.UserContext(), tenantOf(c), req); err != nil {
		return respondError(c, ac.Logger, err)
	}

	user, err := ac.Accounts.Me(c.UserContext(), tenantOf(c))
	if err != nil {
		return respondError(c, ac.Logger, err)
	}
	return ac.issueToken(c, fiber.StatusOK, user)
}

package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"onethy/services"
	"onethy/utils"
)

type AgentController struct {
	Accounts *services.AccountService
	Logger   *logrus.Entry
}

func NewAgentController(db *gorm.DB) *AgentController {
	return &AgentController{
		Accounts: services.NewAccountService(db),
		Logger:   utils.Logger("agents"),
	}
}

func (ac *AgentController) ListAgents(c *fiber.Ctx) error {
	users, err := ac.Accounts.ListAgents(c.UserContext(), tenantOf(c))
	if err != nil {
		return respondError(c, ac.Logger, err)
	}
	return c.JSON(users)
}

func (ac *AgentController) CreateAgent(c *fiber.Ctx) error {
	var req services.CreateAgentInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, ac.Logger, err)
	}
	user, err := ac.Accounts.CreateAgent(c.UserContext(), tenantOf(c), req)
	if err != nil {
		return respondError(c, ac.Logger, err)
	}
	utils.LogEvent("agent_created", map[string]interface{}{
		"tenant_id": tenantOf(c).ID,
		"agent_id":  user.ID,
	})
	return c.Status(fiber.StatusCreated).JSON(user)
}

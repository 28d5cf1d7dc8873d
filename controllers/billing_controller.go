package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"onethy/services"
	"onethy/utils"
)

type BillingController struct {
	Billing *services.BillingService
	Logger  *logrus.Entry
}

func NewBillingController(db *gorm.DB) *BillingController {
	return &BillingController{
		Billing: services.NewBillingService(db),
		Logger:  utils.Logger("billing"),
	}
}

// GetPlans lists the active plans. Public.
func (bc *BillingController) GetPlans(c *fiber.Ctx) error {
	plans, err := bc.Billing.ListPlans(c.UserContext())
	if err != nil {
		return respondError(c, bc.Logger, err)
	}
	return c.JSON(plans)
}

func (bc *BillingController) GetSubscription(c *fiber.Ctx) error {
	sub, err := bc.Billing.Current(c.UserContext(), tenantOf(c))
	if err != nil {
		return respondError(c, bc.Logger, err)
	}
	return c.JSON(sub)
}

func (bc *BillingController) Subscribe(c *fiber.Ctx) error {
	var req services.SubscribeInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, bc.Logger, err)
	}
	sub, err := bc.Billing.Subscribe(c.UserContext(), tenantOf(c), req)
	if err != nil {
		return respondError(c, bc.Logger, err)
	}
	utils.LogEvent("subscription_created", map[string]interface{}{
		"tenant_id":       sub.UserID,
		"plan_id":         sub.PlanID,
		"subscription_id": sub.ID,
		"status":          sub.Status,
	})
	return c.Status(fiber.StatusCreated).JSON(sub)
}

func (bc *BillingController) CancelSubscription(c *fiber.Ctx) error {
	sub, err := bc.Billing.Cancel(c.UserContext(), tenantOf(c))
	if err != nil {
		return respondError(c, bc.Logger, err)
	}
	utils.LogEvent("subscription_cancelled", map[string]interface{}{
		"tenant_id":       sub.UserID,
		"subscription_id": sub.ID,
	})
	return c.JSON(sub)
}

package controller

import (
	"github.com/gofiber/fiber/v2"

	"onethy/services"
	"onethy/utils"
)

// CreateCampaign stores a draft campaign
func (cc *CampaignController) CreateCampaign(c *fiber.Ctx) error {
	var input services.CreateCampaignInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, cc.Logger, err)
	}

	campaign, err := cc.Campaigns.Create(c.UserContext(), tenantOf(c), input)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}

	utils.LogEvent("campaign_created", map[string]interface{}{
		"campaign_id": campaign.ID,
		"tenant_id":   campaign.UserID,
		"scheduled":   campaign.ScheduledAt != nil,
	})
	return c.Status(fiber.StatusCreated).JSON(campaign)
}

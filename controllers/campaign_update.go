package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"onethy/services"
)

// UpdateCampaign merges fields, including status transitions and delivery stats
func (cc *CampaignController) UpdateCampaign(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	var input services.UpdateCampaignInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, cc.Logger, err)
	}

	campaign, err := cc.Campaigns.Update(c.UserContext(), tenantOf(c), id, input)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}

	if input.Status != nil {
		cc.Logger.WithFields(logrus.Fields{
			"campaign_id": campaign.ID,
			"status":      campaign.Status,
		}).Info("Campaign status changed")
	}
	return c.JSON(campaign)
}

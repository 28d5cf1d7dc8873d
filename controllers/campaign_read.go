package controller

import (
	"github.com/gofiber/fiber/v2"
)

// GetCampaigns returns paginated campaigns, optionally filtered by status
func (cc *CampaignController) GetCampaigns(c *fiber.Ctx) error {
	list, err := cc.Campaigns.List(c.UserContext(), tenantOf(c), c.Query("status"), pageFromQuery(c))
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return c.JSON(list)
}

func (cc *CampaignController) GetCampaign(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	campaign, err := cc.Campaigns.Get(c.UserContext(), tenantOf(c), id)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return c.JSON(campaign)
}

package controller

import (
	"github.com/gofiber/fiber/v2"
)

func (cc *CampaignController) DeleteCampaign(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	if err := cc.Campaigns.Delete(c.UserContext(), tenantOf(c), id); err != nil {
		return respondError(c, cc.Logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

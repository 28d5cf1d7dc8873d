package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"onethy/services"
	"onethy/utils"
)

type ChannelController struct {
	Channels *services.ChannelService
	Logger   *logrus.Entry
}

func NewChannelController(db *gorm.DB) *ChannelController {
	return &ChannelController{
		Channels: services.NewChannelService(db),
		Logger:   utils.Logger("channels"),
	}
}

func (cc *ChannelController) GetChannels(c *fiber.Ctx) error {
	channels, err := cc.Channels.List(c.UserContext(), tenantOf(c))
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return c.JSON(channels)
}

func (cc *ChannelController) GetChannel(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	channel, err := cc.Channels.Get(c.UserContext(), tenantOf(c), id)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return c.JSON(channel)
}

func (cc *ChannelController) CreateChannel(c *fiber.Ctx) error {
	var req services.CreateChannelInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, cc.Logger, err)
	}
	channel, err := cc.Channels.Create(c.UserContext(), tenantOf(c), req)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	cc.Logger.WithFields(logrus.Fields{
		"channel_id": channel.ID,
		"tenant_id":  channel.UserID,
		"type":       channel.Type,
	}).Info("Channel created")
	return c.Status(fiber.StatusCreated).JSON(channel)
}

func (cc *ChannelController) UpdateChannel(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	var req services.UpdateChannelInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, cc.Logger, err)
	}
	channel, err := cc.Channels.Update(c.UserContext(), tenantOf(c), id, req)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return c.JSON(channel)
}

// DeleteChannel removes the channel and detaches it from conversations and campaigns
func (cc *ChannelController) DeleteChannel(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	if err := cc.Channels.Delete(c.UserContext(), tenantOf(c), id); err != nil {
		return respondError(c, cc.Logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

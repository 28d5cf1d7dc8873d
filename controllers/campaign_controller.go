package controller

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"onethy/services"
	"onethy/utils"
)

type CampaignController struct {
	Campaigns *services.CampaignService
	Logger    *logrus.Entry
}

func NewCampaignController(db *gorm.DB) *CampaignController {
	return &CampaignController{
		Campaigns: services.NewCampaignService(db),
		Logger:    utils.Logger("campaigns"),
	}
}

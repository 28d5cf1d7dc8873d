package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"onethy/services"
	"onethy/utils"
)

type DashboardController struct {
	Dashboard *services.DashboardService
	Logger    *logrus.Entry
}

func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{
		Dashboard: services.NewDashboardService(db),
		Logger:    utils.Logger("dashboard"),
	}
}

// GetDashboardStats returns summary statistics for the dashboard cards
func (dc *DashboardController) GetDashboardStats(c *fiber.Ctx) error {
	timeFrame := c.Query("time_frame", "week") // hour, day, week, month
	since := services.WindowStart(timeFrame, time.Now())

	stats, err := dc.Dashboard.Stats(c.UserContext(), tenantOf(c), since)
	if err != nil {
		return respondError(c, dc.Logger, err)
	}
	return c.JSON(stats)
}

// GetRecentCampaigns returns data for the recent campaigns table
func (dc *DashboardController) GetRecentCampaigns(c *fiber.Ctx) error {
	summaries, err := dc.Dashboard.RecentCampaigns(c.UserContext(), tenantOf(c), c.QueryInt("limit", 3))
	if err != nil {
		return respondError(c, dc.Logger, err)
	}
	return c.JSON(summaries)
}

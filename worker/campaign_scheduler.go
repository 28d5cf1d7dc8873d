package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"onethy/services"
	"onethy/utils"
)

// CampaignScheduler moves draft campaigns to active once their scheduled time
// has passed.
type CampaignScheduler struct {
	Campaigns  *services.CampaignService
	Interval   time.Duration
	StartDelay time.Duration
	Logger     *logrus.Entry

	now func() time.Time
}

func NewCampaignScheduler(db *gorm.DB, interval time.Duration) *CampaignScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CampaignScheduler{
		Campaigns:  services.NewCampaignService(db),
		Interval:   interval,
		StartDelay: 10 * time.Second,
		Logger:     utils.Logger("campaign_scheduler"),
		now:        time.Now,
	}
}

// Start blocks until ctx is cancelled.
func (cs *CampaignScheduler) Start(ctx context.Context) {
	// Let the server start up
	select {
	case <-ctx.Done():
		return
	case <-time.After(cs.StartDelay):
	}

	cs.Logger.WithField("interval", cs.Interval.String()).Info("Campaign scheduler started")

	ticker := time.NewTicker(cs.Interval)
	defer ticker.Stop()

	cs.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			cs.Logger.Info("Campaign scheduler shutting down")
			return
		case <-ticker.C:
			cs.RunOnce(ctx)
		}
	}
}

// RunOnce activates the campaigns that are due and returns how many were started.
func (cs *CampaignScheduler) RunOnce(ctx context.Context) int64 {
	started, err := cs.Campaigns.ActivateDue(ctx, cs.now())
	if err != nil {
		if ctx.Err() == nil {
			cs.Logger.WithError(err).Error("Failed to activate scheduled campaigns")
			utils.LogError("campaign_scheduler", err, nil)
		}
		return 0
	}
	if started > 0 {
		utils.LogEvent("campaigns_activated", map[string]interface{}{
			"count": started,
		})
	}
	return started
}

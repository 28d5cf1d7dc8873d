package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"onethy/models"
)

type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// DashboardStats feeds the dashboard cards. Message and contact counts cover
// the requested window; the rest are current totals.
type DashboardStats struct {
	Since                 time.Time `json:"since"`
	OpenConversations     int64     `json:"openConversations"`
	PendingConversations  int64     `json:"pendingConversations"`
	ResolvedConversations int64     `json:"resolvedConversations"`
	UnassignedOpen        int64     `json:"unassignedOpen"`
	UnreadMessages        int64     `json:"unreadMessages"`
	TotalContacts         int64     `json:"totalContacts"`
	NewContacts           int64     `json:"newContacts"`
	MessagesReceived      int64     `json:"messagesReceived"`
	MessagesSent          int64     `json:"messagesSent"`
	OpenTickets           int64     `json:"openTickets"`
	ActiveCampaigns       int64     `json:"activeCampaigns"`
}

type CampaignSummary struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Status       string  `json:"status"`
	Sent         int     `json:"sent"`
	DeliveryRate float64 `json:"deliveryRate"`
	OpenRate     float64 `json:"openRate"`
}

// WindowStart maps a time frame (hour, day, week, month) to the start of the
// window ending at now. Unknown frames mean a week.
func WindowStart(timeFrame string, now time.Time) time.Time {
	switch timeFrame {
	case "hour":
		return now.Add(-1 * time.Hour)
	case "day":
		return now.Add(-24 * time.Hour)
	case "month":
		return now.Add(-30 * 24 * time.Hour)
	default:
		return now.Add(-7 * 24 * time.Hour)
	}
}

func (s *DashboardService) Stats(ctx context.Context, t Tenant, since time.Time) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := &DashboardStats{Since: since}

	var byStatus []struct {
		Status string
		Count  int64
	}
	err := db.Model(&models.Conversation{}).Scopes(t.owns("conversations")).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error
	if err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		switch row.Status {
		case models.ConversationOpen:
			stats.OpenConversations = row.Count
		case models.ConversationPending:
			stats.PendingConversations = row.Count
		case models.ConversationResolved:
			stats.ResolvedConversations = row.Count
		}
	}

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.UnassignedOpen, db.Model(&models.Conversation{}).Scopes(t.owns("conversations")).
			Where("status <> ? AND assigned_agent_id IS NULL", models.ConversationResolved)},
		{&stats.TotalContacts, db.Model(&models.Contact{}).Scopes(t.owns("contacts"))},
		{&stats.NewContacts, db.Model(&models.Contact{}).Scopes(t.owns("contacts")).
			Where("created_at >= ?", since)},
		{&stats.OpenTickets, db.Model(&models.SupportTicket{}).Scopes(t.owns("support_tickets")).
			Where("status <> ?", models.TicketResolved)},
		{&stats.ActiveCampaigns, db.Model(&models.Campaign{}).Scopes(t.owns("campaigns")).
			Where("status = ?", models.CampaignActive)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	err = db.Model(&models.Conversation{}).Scopes(t.owns("conversations")).
		Select("COALESCE(SUM(unread_count), 0)").
		Scan(&stats.UnreadMessages).Error
	if err != nil {
		return nil, err
	}

	conversations := db.Model(&models.Conversation{}).Select("id").Where("user_id = ?", t.ID)
	for fromMe, dest := range map[bool]*int64{false: &stats.MessagesReceived, true: &stats.MessagesSent} {
		err := db.Model(&models.Message{}).
			Where("conversation_id IN (?)", conversations).
			Where("from_me = ? AND timestamp >= ?", fromMe, since).
			Count(dest).Error
		if err != nil {
			return nil, err
		}
	}
	return stats, nil
}

// RecentCampaigns returns the latest campaigns with their delivery figures.
func (s *DashboardService) RecentCampaigns(ctx context.Context, t Tenant, limit int) ([]CampaignSummary, error) {
	if limit <= 0 || limit > MaxLimit {
		limit = 3
	}
	var campaigns []models.Campaign
	err := s.db.WithContext(ctx).Scopes(t.owns("campaigns")).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]CampaignSummary, 0, len(campaigns))
	for _, campaign := range campaigns {
		summaries = append(summaries, CampaignSummary{
			ID:           campaign.ID,
			Name:         campaign.Name,
			Status:       campaign.Status,
			Sent:         campaign.SentMessages,
			DeliveryRate: campaign.DeliveryRate,
			OpenRate:     campaign.OpenRate,
		})
	}
	return summaries, nil
}

package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"onethy/models"
)

var ticketStatuses = []string{models.TicketOpen, models.TicketPending, models.TicketResolved}

type TicketService struct {
	db *gorm.DB
}

func NewTicketService(db *gorm.DB) *TicketService {
	return &TicketService{db: db}
}

type TicketFilters struct {
	Status   string
	Priority string
}

type CreateTicketInput struct {
	Subject     string `json:"subject" validate:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Category    string `json:"category"`
}

type UpdateTicketInput struct {
	Subject     *string `json:"subject"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	Category    *string `json:"category"`
}

func (s *TicketService) List(ctx context.Context, t Tenant, f TicketFilters, p Page) (List[models.SupportTicket], error) {
	p = p.Normalize()
	query := s.db.WithContext(ctx).Model(&models.SupportTicket{}).Scopes(t.owns("support_tickets"))
	if f.Status != "" {
		if err := mustBeOneOf("status", f.Status, ticketStatuses); err != nil {
			return List[models.SupportTicket]{}, err
		}
		query = query.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		if err := mustBeOneOf("priority", f.Priority, priorities); err != nil {
			return List[models.SupportTicket]{}, err
		}
		query = query.Where("priority = ?", f.Priority)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return List[models.SupportTicket]{}, err
	}
	var items []models.SupportTicket
	if err := query.Order("created_at DESC, id DESC").Limit(p.Limit).Offset(p.Offset).Find(&items).Error; err != nil {
		return List[models.SupportTicket]{}, err
	}
	return newList(items, total, p), nil
}

func (s *TicketService) Get(ctx context.Context, t Tenant, id uint) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	if err := first(s.db.WithContext(ctx), t, "support_tickets", &ticket, id, "ticket"); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (s *TicketService) Create(ctx context.Context, t Tenant, in CreateTicketInput) (*models.SupportTicket, error) {
	ticket := models.SupportTicket{
		UserID:      t.ID,
		Subject:     strings.TrimSpace(in.Subject),
		Description: in.Description,
		Status:      models.TicketOpen,
		Priority:    models.PriorityMedium,
		Category:    strings.TrimSpace(in.Category),
	}
	if ticket.Subject == "" {
		return nil, invalid("subject", "subject is required")
	}
	if in.Priority != "" {
		if err := mustBeOneOf("priority", in.Priority, priorities); err != nil {
			return nil, err
		}
		ticket.Priority = in.Priority
	}
	if ticket.Category == "" {
		ticket.Category = "general"
	}
	if err := s.db.WithContext(ctx).Create(&ticket).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (s *TicketService) Update(ctx context.Context, t Tenant, id uint, in UpdateTicketInput) (*models.SupportTicket, error) {
	ticket, err := s.Get(ctx, t, id)
	if err != nil {
		return nil, err
	}
	if in.Subject != nil {
		subject := strings.TrimSpace(*in.Subject)
		if subject == "" {
			return nil, invalid("subject", "subject cannot be empty")
		}
		ticket.Subject = subject
	}
	if in.Description != nil {
		ticket.Description = *in.Description
	}
	if in.Status != nil {
		if err := mustBeOneOf("status", *in.Status, ticketStatuses); err != nil {
			return nil, err
		}
		ticket.Status = *in.Status
	}
	if in.Priority != nil {
		if err := mustBeOneOf("priority", *in.Priority, priorities); err != nil {
			return nil, err
		}
		ticket.Priority = *in.Priority
	}
	if in.Category != nil && strings.TrimSpace(*in.Category) != "" {
		ticket.Category = strings.TrimSpace(*in.Category)
	}
	if err := s.db.WithContext(ctx).Save(ticket).Error; err != nil {
		return nil, err
	}
	return ticket, nil
}

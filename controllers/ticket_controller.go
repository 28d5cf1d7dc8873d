package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"onethy/services"
	"onethy/utils"
)

type TicketController struct {
	Tickets *services.TicketService
	Logger  *logrus.Entry
}

func NewTicketController(db *gorm.DB) *TicketController {
	return &TicketController{
		Tickets: services.NewTicketService(db),
		Logger:  utils.Logger("tickets"),
	}
}

func (tc *TicketController) GetTickets(c *fiber.Ctx) error {
	filters := services.TicketFilters{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
	}
	list, err := tc.Tickets.List(c.UserContext(), tenantOf(c), filters, pageFromQuery(c))
	if err != nil {
		return respondError(c, tc.Logger, err)
	}
	return c.JSON(list)
}

func (tc *TicketController) GetTicket(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, tc.Logger, err)
	}
	ticket, err := tc.Tickets.Get(c.UserContext(), tenantOf(c), id)
	if err != nil {
		return respondError(c, tc.Logger, err)
	}
	return c.JSON(ticket)
}

func (tc *TicketController) CreateTicket(c *fiber.Ctx) error {
	var req services.CreateTicketInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, tc.Logger, err)
	}
	ticket, err := tc.Tickets.Create(c.UserContext(), tenantOf(c), req)
	if err != nil {
		return respondError(c, tc.Logger, err)
	}
	utils.LogEvent("ticket_opened", map[string]interface{}{
		"ticket_id": ticket.ID,
		"tenant_id": ticket.UserID,
		"priority":  ticket.Priority,
	})
	return c.Status(fiber.StatusCreated).JSON(ticket)
}

func (tc *TicketController) UpdateTicket(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, tc.Logger, err)
	}
	var req services.UpdateTicketInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, tc.Logger, err)
	}
	ticket, err := tc.Tickets.Update(c.UserContext(), tenantOf(c), id, req)
	if err != nil {
		return respondError(c, tc.Logger, err)
	}
	return c.JSON(ticket)
}

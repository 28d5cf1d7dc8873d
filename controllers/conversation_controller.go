package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"onethy/services"
	"onethy/utils"
)

// ConversationController serves the inbox: conversations and their messages.
type ConversationController struct {
	Conversations *services.ConversationService
	Messages      *services.MessageService
	Logger        *logrus.Entry
}

func NewConversationController(db *gorm.DB) *ConversationController {
	return &ConversationController{
		Conversations: services.NewConversationService(db),
		Messages:      services.NewMessageService(db),
		Logger:        utils.Logger("inbox"),
	}
}

// GetConversations returns paginated conversations with filters
func (cc *ConversationController) GetConversations(c *fiber.Ctx) error {
	filters := services.ConversationFilters{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
	}
	switch agent := c.Query("assignedAgentId"); agent {
	case "":
	case "unassigned":
		filters.Unassigned = true
	default:
		id := utils.ParseUint(agent)
		if id == 0 {
			return respondError(c, cc.Logger, &services.ValidationError{Field: "assignedAgentId", Message: "Invalid assignedAgentId"})
		}
		filters.AssignedAgentID = &id
	}
	if team := c.Query("assignedTeamId"); team != "" {
		id := utils.ParseUint(team)
		if id == 0 {
			return respondError(c, cc.Logger, &services.ValidationError{Field: "assignedTeamId", Message: "Invalid assignedTeamId"})
		}
		filters.AssignedTeamID = &id
	}

	list, err := cc.Conversations.List(c.UserContext(), tenantOf(c), filters, pageFromQuery(c))
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return c.JSON(list)
}

func (cc *ConversationController) CreateConversation(c *fiber.Ctx) error {
	var req services.CreateConversationInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, cc.Logger, err)
	}
	conv, err := cc.Conversations.Create(c.UserContext(), tenantOf(c), req)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(conv)
}

func (cc *ConversationController) GetConversation(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	conv, err := cc.Conversations.Get(c.UserContext(), tenantOf(c), id)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return c.JSON(conv)
}

// UpdateConversation merges the given fields. Send null on assignedAgentId or
// assignedTeamId to unassign.
func (cc *ConversationController) UpdateConversation(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	var req services.UpdateConversationInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, cc.Logger, err)
	}
	conv, err := cc.Conversations.Update(c.UserContext(), tenantOf(c), id, req)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return c.JSON(conv)
}

func (cc *ConversationController) AssignToMe(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	conv, err := cc.Conversations.AssignToMe(c.UserContext(), tenantOf(c), id)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	utils.LogEvent("conversation_assigned", map[string]interface{}{
		"conversation_id": id,
		"user_id":         tenantOf(c).UserID,
	})
	return c.JSON(conv)
}

func (cc *ConversationController) MarkAsRead(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	conv, err := cc.Conversations.MarkAsRead(c.UserContext(), tenantOf(c), id)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return c.JSON(conv)
}

func (cc *ConversationController) GetMessages(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	list, err := cc.Messages.List(c.UserContext(), tenantOf(c), id, pageFromQuery(c))
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return c.JSON(list)
}

func (cc *ConversationController) SendMessage(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	var req services.SendMessageInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, cc.Logger, err)
	}
	msg, err := cc.Messages.Send(c.UserContext(), tenantOf(c), id, req)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

func (cc *ConversationController) UpdateMessageStatus(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	var req struct {
		Status string `json:"status" validate:"required"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, cc.Logger, err)
	}
	msg, err := cc.Messages.UpdateStatus(c.UserContext(), tenantOf(c), id, req.Status)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return c.JSON(msg)
}

// ReceiveInbound is called by the WhatsApp bridge for every customer message.
func (cc *ConversationController) ReceiveInbound(c *fiber.Ctx) error {
	var req services.InboundMessageInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, cc.Logger, err)
	}
	result, err := cc.Messages.ReceiveInbound(c.UserContext(), tenantOf(c), req)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	cc.Logger.WithFields(logrus.Fields{
		"conversation_id": result.Conversation.ID,
		"contact_id":      result.Contact.ID,
	}).Debug("Inbound message stored")
	return c.Status(fiber.StatusCreated).JSON(result)
}

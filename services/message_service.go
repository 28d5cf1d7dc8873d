package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"onethy/models"
	"onethy/utils"
)

var (
	messageTypes    = []string{models.MessageText, "image", "audio", "video", "document"}
	messageStatuses = []string{models.MessageSent, models.MessageDelivered, models.MessageReceived, models.MessageRead, models.MessageFailed}
)

type MessageService struct {
	db *gorm.DB
}

func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{db: db}
}

type SendMessageInput struct {
	Content string `json:"content" validate:"required"`
	Type    string `json:"type" validate:"omitempty,oneof=text image audio video document"`
}

// InboundMessageInput is what the WhatsApp bridge posts for a customer message.
type InboundMessageInput struct {
	ChannelID  *uint      `json:"channelId"`
	Phone      string     `json:"phone" validate:"required"`
	Name       string     `json:"name"`
	Content    string     `json:"content" validate:"required"`
	Type       string     `json:"type" validate:"omitempty,oneof=text image audio video document"`
	ExternalID string     `json:"externalId"`
	Timestamp  *time.Time `json:"timestamp"`
}

// InboundResult reports where an inbound message was filed.
type InboundResult struct {
	Contact      *models.Contact      `json:"contact"`
	Conversation *models.Conversation `json:"conversation"`
	Message      *models.Message      `json:"message"`
}

func messageType(t string) (string, error) {
	if t == "" {
		return models.MessageText, nil
	}
	if err := mustBeOneOf("type", t, messageTypes); err != nil {
		return "", err
	}
	return t, nil
}

// appendMessage stores msg in conv and refreshes every cached counter in the
// same transaction: the conversation preview and activity, the unread count
// for inbound messages, and the contact's message statistics.
func appendMessage(tx *gorm.DB, conv *models.Conversation, msg *models.Message) error {
	msg.ConversationID = conv.ID
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if msg.ExternalID == "" {
		msg.ExternalID = uuid.NewString()
	}
	if err := tx.Create(msg).Error; err != nil {
		return err
	}

	// The recency check runs inside the UPDATE so concurrent appends cannot
	// replace a newer preview with an older one.
	err := tx.Model(&models.Conversation{}).
		Where("id = ? AND (last_activity IS NULL OR last_activity <= ?)", conv.ID, msg.Timestamp).
		Updates(map[string]interface{}{
			"last_message":  msg.Content,
			"last_activity": msg.Timestamp,
		}).Error
	if err != nil {
		return err
	}
	if !msg.FromMe {
		err := tx.Model(&models.Conversation{}).Where("id = ?", conv.ID).
			Update("unread_count", gorm.Expr("unread_count + ?", 1)).Error
		if err != nil {
			return err
		}
	}

	return tx.Model(&models.Contact{}).Where("id = ?", conv.ContactID).Updates(map[string]interface{}{
		"total_messages":  gorm.Expr("total_messages + ?", 1),
		"last_message_at": msg.Timestamp,
	}).Error
}

func countMessage(fromMe bool) {
	direction := "inbound"
	if fromMe {
		direction = "outbound"
	}
	utils.Registry().Messages.WithLabelValues(direction).Inc()
}

// Send appends an outbound message written by the acting user.
func (s *MessageService) Send(ctx context.Context, t Tenant, conversationID uint, in SendMessageInput) (*models.Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, invalid("content", "content is required")
	}
	msgType, err := messageType(in.Type)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		Content:  in.Content,
		Type:     msgType,
		FromMe:   true,
		Status:   models.MessageSent,
		SenderID: &t.UserID,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv, err := findConversation(tx, t, conversationID)
		if err != nil {
			return err
		}
		return appendMessage(tx, conv, msg)
	})
	if err != nil {
		return nil, err
	}
	countMessage(true)
	return msg, nil
}

// List returns a conversation's messages oldest first.
func (s *MessageService) List(ctx context.Context, t Tenant, conversationID uint, p Page) (List[models.Message], error) {
	p = p.Normalize()
	db := s.db.WithContext(ctx)
	if _, err := findConversation(db, t, conversationID); err != nil {
		return List[models.Message]{}, err
	}

	query := db.Model(&models.Message{}).Where("conversation_id = ?", conversationID).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return List[models.Message]{}, err
	}
	var items []models.Message
	if err := query.Order("timestamp ASC, id ASC").Limit(p.Limit).Offset(p.Offset).Find(&items).Error; err != nil {
		return List[models.Message]{}, err
	}
	return newList(items, total, p), nil
}

// UpdateStatus records a delivery receipt. Status is the only mutable field
// of a message.
func (s *MessageService) UpdateStatus(ctx context.Context, t Tenant, messageID uint, status string) (*models.Message, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return nil, invalid("status", "status is required")
	}
	if err := mustBeOneOf("status", status, messageStatuses); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var msg models.Message
	err := db.Where("id = ?", messageID).
		Where("conversation_id IN (?)", db.Model(&models.Conversation{}).Select("id").Where("user_id = ?", t.ID)).
		First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("message")
	}
	if err != nil {
		return nil, err
	}

	if err := db.Model(&msg).Update("status", status).Error; err != nil {
		return nil, err
	}
	msg.Status = status
	return &msg, nil
}

// ReceiveInbound files a customer message: the contact is found by phone or
// created, the latest unresolved conversation with it is reused or a new one
// is opened, and the message is appended.
func (s *MessageService) ReceiveInbound(ctx context.Context, t Tenant, in InboundMessageInput) (*InboundResult, error) {
	phone := strings.TrimSpace(in.Phone)
	if phone == "" {
		return nil, invalid("phone", "phone is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, invalid("content", "content is required")
	}
	msgType, err := messageType(in.Type)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		Content:    in.Content,
		Type:       msgType,
		FromMe:     false,
		Status:     models.MessageReceived,
		ExternalID: in.ExternalID,
	}
	if in.Timestamp != nil {
		msg.Timestamp = *in.Timestamp
		// Bridge clocks can run ahead; a future timestamp would pin the
		// preview and hide later outbound messages.
		if now := time.Now(); msg.Timestamp.After(now) {
			msg.Timestamp = now
		}
	}

	var contact models.Contact
	var conv models.Conversation
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.ChannelID != nil {
			if _, err := findChannel(tx, t, *in.ChannelID); err != nil {
				return err
			}
		}

		err := tx.Scopes(t.owns("contacts")).Where("phone = ?", phone).First(&contact).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			name := strings.TrimSpace(in.Name)
			if name == "" {
				name = phone
			}
			contact = models.Contact{
				UserID: t.ID,
				Name:   name,
				Phone:  phone,
				Status: models.ContactActive,
				Source: models.SourceWhatsApp,
			}
			err = tx.Create(&contact).Error
		}
		if err != nil {
			return err
		}

		query := tx.Scopes(t.owns("conversations")).
			Where("contact_id = ? AND status <> ?", contact.ID, models.ConversationResolved)
		if in.ChannelID != nil {
			query = query.Where("channel_id = ?", *in.ChannelID)
		}
		err = query.Order("last_activity DESC, id DESC").First(&conv).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			conv = models.Conversation{
				UserID:    t.ID,
				ContactID: contact.ID,
				ChannelID: in.ChannelID,
				Status:    models.ConversationOpen,
				Priority:  models.PriorityMedium,
				Tags:      []string{},
			}
			err = tx.Create(&conv).Error
		}
		if err != nil {
			return err
		}

		if err := appendMessage(tx, &conv, msg); err != nil {
			return err
		}
		if err := tx.Preload("TagRows").First(&contact, contact.ID).Error; err != nil {
			return err
		}
		return tx.First(&conv, conv.ID).Error
	})
	if err != nil {
		return nil, err
	}
	countMessage(false)
	return &InboundResult{Contact: &contact, Conversation: &conv, Message: msg}, nil
}

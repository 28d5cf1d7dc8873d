package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"onethy/models"
	"onethy/utils"
)

var (
	conversationStatuses = []string{models.ConversationOpen, models.ConversationPending, models.ConversationResolved}
	priorities           = []string{models.PriorityLow, models.PriorityMedium, models.PriorityHigh}
)

type ConversationService struct {
	db *gorm.DB
}

func NewConversationService(db *gorm.DB) *ConversationService {
	return &ConversationService{db: db}
}

// ConversationFilters narrows List. Zero values mean "no filter".
type ConversationFilters struct {
	Status          string
	Priority        string
	AssignedAgentID *uint
	Unassigned      bool
	AssignedTeamID  *uint
	Search          string
}

type CreateConversationInput struct {
	ContactID uint     `json:"contactId" validate:"required"`
	ChannelID *uint    `json:"channelId"`
	Priority  string   `json:"priority" validate:"omitempty,oneof=low medium high"`
	Tags      []string `json:"tags"`
}

// UpdateConversationInput carries a partial update. Assignment fields accept
// an explicit null to unassign.
type UpdateConversationInput struct {
	Status          *string              `json:"status"`
	Priority        *string              `json:"priority"`
	AssignedAgentID utils.Nullable[uint] `json:"assignedAgentId"`
	AssignedTeamID  utils.Nullable[uint] `json:"assignedTeamId"`
	Tags            *[]string            `json:"tags"`
}

// normalizeStatus accepts the legacy "closed" alias for resolved.
func normalizeStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "closed" {
		return models.ConversationResolved
	}
	return status
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

func mustBeOneOf(field, value string, allowed []string) error {
	if !oneOf(value, allowed) {
		return invalid(field, field+" must be one of: "+strings.Join(allowed, ", "))
	}
	return nil
}

func findConversation(tx *gorm.DB, t Tenant, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := first(tx, t, "conversations", &conv, id, "conversation"); err != nil {
		return nil, err
	}
	return &conv, nil
}

// List returns the tenant's conversations, most recent activity first.
func (s *ConversationService) List(ctx context.Context, t Tenant, f ConversationFilters, p Page) (List[models.Conversation], error) {
	p = p.Normalize()

	query := s.db.WithContext(ctx).Model(&models.Conversation{}).Scopes(t.owns("conversations"))

	if f.Status != "" {
		status := normalizeStatus(f.Status)
		if err := mustBeOneOf("status", status, conversationStatuses); err != nil {
			return List[models.Conversation]{}, err
		}
		query = query.Where("conversations.status = ?", status)
	}
	if f.Priority != "" {
		if err := mustBeOneOf("priority", f.Priority, priorities); err != nil {
			return List[models.Conversation]{}, err
		}
		query = query.Where("conversations.priority = ?", f.Priority)
	}
	switch {
	case f.Unassigned:
		query = query.Where("conversations.assigned_agent_id IS NULL")
	case f.AssignedAgentID != nil:
		query = query.Where("conversations.assigned_agent_id = ?", *f.AssignedAgentID)
	}
	if f.AssignedTeamID != nil {
		query = query.Where("conversations.assigned_team_id = ?", *f.AssignedTeamID)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := containsPattern(strings.ToLower(search))
		query = query.Joins("JOIN contacts ON contacts.id = conversations.contact_id").
			Where(`(LOWER(contacts.name) LIKE ? ESCAPE '\' OR contacts.phone LIKE ? ESCAPE '\' OR LOWER(conversations.last_message) LIKE ? ESCAPE '\')`,
				like, containsPattern(search), like)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return List[models.Conversation]{}, err
	}

	var items []models.Conversation
	err := query.
		Preload("Contact.TagRows").
		Preload("AssignedAgent").
		Preload("AssignedTeam").
		Order("conversations.last_activity DESC, conversations.id DESC").
		Limit(p.Limit).
		Offset(p.Offset).
		Find(&items).Error
	if err != nil {
		return List[models.Conversation]{}, err
	}
	return newList(items, total, p), nil
}

// Get returns one conversation with its contact, channel, assignment and participants.
func (s *ConversationService) Get(ctx context.Context, t Tenant, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := first(s.db.WithContext(ctx).
		Preload("Contact.TagRows").
		Preload("Contact.Attributes").
		Preload("Channel").
		Preload("AssignedAgent").
		Preload("AssignedTeam").
		Preload("Participants"),
		t, "conversations", &conv, id, "conversation")
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// Create opens a conversation with one of the tenant's contacts.
func (s *ConversationService) Create(ctx context.Context, t Tenant, in CreateConversationInput) (*models.Conversation, error) {
	if in.ContactID == 0 {
		return nil, invalid("contactId", "contactId is required")
	}
	priority := models.PriorityMedium
	if in.Priority != "" {
		if err := mustBeOneOf("priority", in.Priority, priorities); err != nil {
			return nil, err
		}
		priority = in.Priority
	}

	conv := models.Conversation{
		UserID:       t.ID,
		ContactID:    in.ContactID,
		ChannelID:    in.ChannelID,
		Status:       models.ConversationOpen,
		Priority:     priority,
		LastActivity: time.Now(),
		Tags:         utils.NormalizeTags(in.Tags),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findContact(tx, t, in.ContactID); err != nil {
			return err
		}
		if in.ChannelID != nil {
			if _, err := findChannel(tx, t, *in.ChannelID); err != nil {
				return err
			}
		}
		return tx.Create(&conv).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, t, conv.ID)
}

// Update applies a partial update. Only the columns present in the input are
// written so concurrent message appends keep their counters.
func (s *ConversationService) Update(ctx context.Context, t Tenant, id uint, in UpdateConversationInput) (*models.Conversation, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv, err := findConversation(tx, t, id)
		if err != nil {
			return err
		}

		var columns []string
		if in.Status != nil {
			status := normalizeStatus(*in.Status)
			if err := mustBeOneOf("status", status, conversationStatuses); err != nil {
				return err
			}
			conv.Status = status
			columns = append(columns, "status")
		}
		if in.Priority != nil {
			if err := mustBeOneOf("priority", *in.Priority, priorities); err != nil {
				return err
			}
			conv.Priority = *in.Priority
			columns = append(columns, "priority")
		}
		if in.AssignedAgentID.Set {
			if agentID := in.AssignedAgentID.Value; agentID != nil {
				ok, err := isMember(tx, t, *agentID)
				if err != nil {
					return err
				}
				if !ok {
					return invalid("assignedAgentId", "assignedAgentId does not belong to this account")
				}
			}
			conv.AssignedAgentID = in.AssignedAgentID.Value
			columns = append(columns, "assigned_agent_id")
		}
		if in.AssignedTeamID.Set {
			if teamID := in.AssignedTeamID.Value; teamID != nil {
				if _, err := findTeam(tx, t, *teamID); errors.Is(err, ErrNotFound) {
					return invalid("assignedTeamId", "assignedTeamId does not belong to this account")
				} else if err != nil {
					return err
				}
			}
			conv.AssignedTeamID = in.AssignedTeamID.Value
			columns = append(columns, "assigned_team_id")
		}
		if in.Tags != nil {
			conv.Tags = utils.NormalizeTags(*in.Tags)
			columns = append(columns, "tags")
		}
		if len(columns) == 0 {
			return nil
		}

		if err := tx.Model(conv).Select(append(columns, "updated_at")).Updates(conv).Error; err != nil {
			return err
		}
		if in.AssignedAgentID.Value != nil {
			return addParticipant(tx, conv.ID, *in.AssignedAgentID.Value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, t, id)
}

// AssignToMe assigns the conversation to the acting user and records them as
// a participant. Calling it twice leaves a single participant row.
func (s *ConversationService) AssignToMe(ctx context.Context, t Tenant, id uint) (*models.Conversation, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv, err := findConversation(tx, t, id)
		if err != nil {
			return err
		}
		if err := tx.Model(conv).Update("assigned_agent_id", t.UserID).Error; err != nil {
			return err
		}
		return addParticipant(tx, conv.ID, t.UserID)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, t, id)
}

// MarkAsRead resets the unread counter.
func (s *ConversationService) MarkAsRead(ctx context.Context, t Tenant, id uint) (*models.Conversation, error) {
	db := s.db.WithContext(ctx)
	conv, err := findConversation(db, t, id)
	if err != nil {
		return nil, err
	}
	if err := db.Model(conv).Update("unread_count", 0).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, t, id)
}

func addParticipant(tx *gorm.DB, conversationID, userID uint) error {
	participant := models.ConversationParticipant{
		ConversationID: conversationID,
		UserID:         userID,
		Role:           models.RoleAgent,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "conversation_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&participant).Error
}

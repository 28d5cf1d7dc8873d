package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"onethy/models"
)

type NoteService struct {
	db *gorm.DB
}

func NewNoteService(db *gorm.DB) *NoteService {
	return &NoteService{db: db}
}

type CreateNoteInput struct {
	Content   string `json:"content" validate:"required"`
	IsPrivate bool   `json:"isPrivate"`
}

type UpdateNoteInput struct {
	Content   *string `json:"content"`
	IsPrivate *bool   `json:"isPrivate"`
}

// visibleTo keeps public notes and the private notes written by userID.
func visibleTo(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(conversation_notes.is_private = ? OR conversation_notes.author_id = ?)", false, userID)
	}
}

// List returns the notes of a conversation the acting user may see, oldest first.
func (s *NoteService) List(ctx context.Context, t Tenant, conversationID uint, p Page) (List[models.ConversationNote], error) {
	p = p.Normalize()
	db := s.db.WithContext(ctx)
	if _, err := findConversation(db, t, conversationID); err != nil {
		return List[models.ConversationNote]{}, err
	}

	query := db.Model(&models.ConversationNote{}).
		Scopes(t.owns("conversation_notes"), visibleTo(t.UserID)).
		Where("conversation_notes.conversation_id = ?", conversationID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return List[models.ConversationNote]{}, err
	}
	var items []models.ConversationNote
	err := query.Preload("Author").
		Order("conversation_notes.created_at ASC, conversation_notes.id ASC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&items).Error
	if err != nil {
		return List[models.ConversationNote]{}, err
	}
	return newList(items, total, p), nil
}

func (s *NoteService) Create(ctx context.Context, t Tenant, conversationID uint, in CreateNoteInput) (*models.ConversationNote, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, invalid("content", "content is required")
	}
	db := s.db.WithContext(ctx)
	if _, err := findConversation(db, t, conversationID); err != nil {
		return nil, err
	}

	note := models.ConversationNote{
		UserID:         t.ID,
		ConversationID: conversationID,
		AuthorID:       t.UserID,
		Content:        in.Content,
		IsPrivate:      in.IsPrivate,
	}
	if err := db.Create(&note).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

// findOwnNote loads a note the acting user wrote. Notes by other authors are
// reported as missing.
func findOwnNote(tx *gorm.DB, t Tenant, noteID uint) (*models.ConversationNote, error) {
	var note models.ConversationNote
	err := tx.Scopes(t.owns("conversation_notes")).
		Where("id = ? AND author_id = ?", noteID, t.UserID).
		First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("note")
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (s *NoteService) Update(ctx context.Context, t Tenant, noteID uint, in UpdateNoteInput) (*models.ConversationNote, error) {
	db := s.db.WithContext(ctx)
	note, err := findOwnNote(db, t, noteID)
	if err != nil {
		return nil, err
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, invalid("content", "content cannot be empty")
		}
		note.Content = *in.Content
	}
	if in.IsPrivate != nil {
		note.IsPrivate = *in.IsPrivate
	}
	if err := db.Save(note).Error; err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, t Tenant, noteID uint) error {
	db := s.db.WithContext(ctx)
	note, err := findOwnNote(db, t, noteID)
	if err != nil {
		return err
	}
	return db.Delete(note).Error
}

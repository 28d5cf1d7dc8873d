package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"onethy/models"
)

type MacroService struct {
	db *gorm.DB
}

func NewMacroService(db *gorm.DB) *MacroService {
	return &MacroService{db: db}
}

type CreateMacroInput struct {
	Name     string `json:"name" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Shortcut string `json:"shortcut" validate:"shortcut"`
}

type UpdateMacroInput struct {
	Name     *string `json:"name"`
	Content  *string `json:"content"`
	Shortcut *string `json:"shortcut"`
}

func findMacro(tx *gorm.DB, t Tenant, id uint) (*models.Macro, error) {
	var macro models.Macro
	if err := first(tx, t, "macros", &macro, id, "macro"); err != nil {
		return nil, err
	}
	return &macro, nil
}

// validShortcut accepts "" or a slash-prefixed word such as "/hello".
func validShortcut(shortcut string) error {
	if shortcut == "" {
		return nil
	}
	if !strings.HasPrefix(shortcut, "/") || len(shortcut) < 2 || strings.ContainsAny(shortcut, " \t\r\n") {
		return invalid("shortcut", "shortcut must start with / and contain no spaces")
	}
	return nil
}

// shortcutTaken reports whether another macro of the tenant uses shortcut.
func shortcutTaken(tx *gorm.DB, t Tenant, shortcut string, exceptID uint) (bool, error) {
	if shortcut == "" {
		return false, nil
	}
	var count int64
	err := tx.Model(&models.Macro{}).Scopes(t.owns("macros")).
		Where("shortcut = ? AND id <> ?", shortcut, exceptID).
		Count(&count).Error
	return count > 0, err
}

// List returns the tenant's macros by name. A non-empty shortcut filters to
// exact matches.
func (s *MacroService) List(ctx context.Context, t Tenant, shortcut string, p Page) (List[models.Macro], error) {
	p = p.Normalize()
	query := s.db.WithContext(ctx).Model(&models.Macro{}).Scopes(t.owns("macros"))
	if shortcut = strings.TrimSpace(shortcut); shortcut != "" {
		query = query.Where("shortcut = ?", shortcut)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return List[models.Macro]{}, err
	}
	var items []models.Macro
	if err := query.Order("name ASC, id ASC").Limit(p.Limit).Offset(p.Offset).Find(&items).Error; err != nil {
		return List[models.Macro]{}, err
	}
	return newList(items, total, p), nil
}

func (s *MacroService) Get(ctx context.Context, t Tenant, id uint) (*models.Macro, error) {
	return findMacro(s.db.WithContext(ctx), t, id)
}

func (s *MacroService) Create(ctx context.Context, t Tenant, in CreateMacroInput) (*models.Macro, error) {
	macro := models.Macro{
		UserID:   t.ID,
		Name:     strings.TrimSpace(in.Name),
		Content:  in.Content,
		Shortcut: strings.TrimSpace(in.Shortcut),
	}
	if macro.Name == "" {
		return nil, invalid("name", "name is required")
	}
	if strings.TrimSpace(macro.Content) == "" {
		return nil, invalid("content", "content is required")
	}
	if err := validShortcut(macro.Shortcut); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := shortcutTaken(tx, t, macro.Shortcut, 0)
		if err != nil {
			return err
		}
		if taken {
			return conflict("shortcut %s is already in use", macro.Shortcut)
		}
		return tx.Create(&macro).Error
	})
	if err != nil {
		return nil, err
	}
	return &macro, nil
}

func (s *MacroService) Update(ctx context.Context, t Tenant, id uint, in UpdateMacroInput) (*models.Macro, error) {
	var macro *models.Macro
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if macro, err = findMacro(tx, t, id); err != nil {
			return err
		}

		columns := []string{"updated_at"}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return invalid("name", "name cannot be empty")
			}
			macro.Name = name
			columns = append(columns, "name")
		}
		if in.Content != nil {
			if strings.TrimSpace(*in.Content) == "" {
				return invalid("content", "content cannot be empty")
			}
			macro.Content = *in.Content
			columns = append(columns, "content")
		}
		if in.Shortcut != nil {
			shortcut := strings.TrimSpace(*in.Shortcut)
			if err := validShortcut(shortcut); err != nil {
				return err
			}
			taken, err := shortcutTaken(tx, t, shortcut, macro.ID)
			if err != nil {
				return err
			}
			if taken {
				return conflict("shortcut %s is already in use", shortcut)
			}
			macro.Shortcut = shortcut
			columns = append(columns, "shortcut")
		}
		return tx.Model(macro).Select(columns).Updates(macro).Error
	})
	if err != nil {
		return nil, err
	}
	return macro, nil
}

func (s *MacroService) Delete(ctx context.Context, t Tenant, id uint) error {
	db := s.db.WithContext(ctx)
	macro, err := findMacro(db, t, id)
	if err != nil {
		return err
	}
	return db.Delete(macro).Error
}

// Apply sends the macro's content into a conversation as an outbound message
// and bumps its usage counter. Both happen or neither does.
func (s *MacroService) Apply(ctx context.Context, t Tenant, conversationID, macroID uint) (*models.Message, error) {
	var msg *models.Message
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv, err := findConversation(tx, t, conversationID)
		if err != nil {
			return err
		}
		macro, err := findMacro(tx, t, macroID)
		if err != nil {
			return err
		}
		if err := tx.Model(macro).UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1)).Error; err != nil {
			return err
		}
		msg = &models.Message{
			Content:  macro.Content,
			Type:     models.MessageText,
			FromMe:   true,
			Status:   models.MessageSent,
			SenderID: &t.UserID,
		}
		return appendMessage(tx, conv, msg)
	})
	if err != nil {
		return nil, err
	}
	countMessage(true)
	return msg, nil
}

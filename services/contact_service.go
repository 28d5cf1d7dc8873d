package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"onethy/models"
	"onethy/utils"
)

var (
	contactStatuses = []string{models.ContactActive, models.ContactInactive, models.ContactBlocked}
	contactSources  = []string{models.SourceManual, models.SourceImport, models.SourceWhatsApp}
	attributeTypes  = []string{"text", "number", "date", "boolean"}
)

type ContactService struct {
	db *gorm.DB
}

func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{db: db}
}

type ContactFilters struct {
	Search string
	Status string
	Tags   []string // matches contacts carrying at least one of them
}

type CreateContactInput struct {
	Name    string   `json:"name" validate:"required"`
	Phone   string   `json:"phone" validate:"required"`
	Email   string   `json:"email" validate:"omitempty,email"`
	Company string   `json:"company"`
	Status  string   `json:"status" validate:"omitempty,oneof=active inactive blocked"`
	Source  string   `json:"source" validate:"omitempty,oneof=manual import whatsapp"`
	Tags    []string `json:"tags"`
}

type UpdateContactInput struct {
	Name    *string   `json:"name"`
	Phone   *string   `json:"phone"`
	Email   *string   `json:"email"`
	Company *string   `json:"company"`
	Status  *string   `json:"status"`
	Source  *string   `json:"source"`
	Tags    *[]string `json:"tags"`
}

type AttributeInput struct {
	Name  string `json:"name" validate:"required"`
	Value string `json:"value"`
	Type  string `json:"type" validate:"omitempty,oneof=text number date boolean"`
}

type UpdateAttributeInput struct {
	Name  *string `json:"name"`
	Value *string `json:"value"`
	Type  *string `json:"type"`
}

func findContact(tx *gorm.DB, t Tenant, id uint) (*models.Contact, error) {
	var contact models.Contact
	if err := first(tx.Preload("TagRows"), t, "contacts", &contact, id, "contact"); err != nil {
		return nil, err
	}
	return &contact, nil
}

func phoneTaken(tx *gorm.DB, t Tenant, phone string, exceptID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.Contact{}).Scopes(t.owns("contacts")).
		Where("phone = ? AND id <> ?", phone, exceptID).
		Count(&count).Error
	return count > 0, err
}

func replaceTags(tx *gorm.DB, contactID uint, tags []string) error {
	if err := tx.Where("contact_id = ?", contactID).Delete(&models.ContactTag{}).Error; err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	rows := models.NewContactTags(tags)
	for i := range rows {
		rows[i].ContactID = contactID
	}
	return tx.Create(&rows).Error
}

// Search lists the tenant's contacts, newest first.
func (s *ContactService) Search(ctx context.Context, t Tenant, f ContactFilters, p Page) (List[models.Contact], error) {
	p = p.Normalize()
	db := s.db.WithContext(ctx)
	query := db.Model(&models.Contact{}).Scopes(t.owns("contacts"))

	if search := strings.TrimSpace(f.Search); search != "" {
		like := containsPattern(strings.ToLower(search))
		query = query.Where(`(LOWER(contacts.name) LIKE ? ESCAPE '\' OR LOWER(contacts.email) LIKE ? ESCAPE '\' OR contacts.phone LIKE ? ESCAPE '\')`,
			like, like, containsPattern(search))
	}
	if f.Status != "" {
		if err := mustBeOneOf("status", f.Status, contactStatuses); err != nil {
			return List[models.Contact]{}, err
		}
		query = query.Where("contacts.status = ?", f.Status)
	}
	if tags := utils.NormalizeTags(f.Tags); len(tags) > 0 {
		query = query.Where("contacts.id IN (?)",
			db.Model(&models.ContactTag{}).Select("contact_id").Where("tag IN ?", tags))
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return List[models.Contact]{}, err
	}
	var items []models.Contact
	err := query.Preload("TagRows").
		Order("contacts.created_at DESC, contacts.id DESC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&items).Error
	if err != nil {
		return List[models.Contact]{}, err
	}
	return newList(items, total, p), nil
}

// Get returns a contact with its tags and attributes.
func (s *ContactService) Get(ctx context.Context, t Tenant, id uint) (*models.Contact, error) {
	var contact models.Contact
	err := first(s.db.WithContext(ctx).Preload("TagRows").Preload("Attributes", func(db *gorm.DB) *gorm.DB {
		return db.Order("name ASC")
	}), t, "contacts", &contact, id, "contact")
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (s *ContactService) Create(ctx context.Context, t Tenant, in CreateContactInput) (*models.Contact, error) {
	contact := models.Contact{
		UserID:  t.ID,
		Name:    strings.TrimSpace(in.Name),
		Phone:   strings.TrimSpace(in.Phone),
		Email:   strings.TrimSpace(in.Email),
		Company: in.Company,
		Status:  models.ContactActive,
		Source:  models.SourceManual,
	}
	if contact.Name == "" {
		return nil, invalid("name", "name is required")
	}
	if contact.Phone == "" {
		return nil, invalid("phone", "phone is required")
	}
	if contact.Email != "" && !utils.IsValidEmail(contact.Email) {
		return nil, invalid("email", "email must be a valid email address")
	}
	if in.Status != "" {
		if err := mustBeOneOf("status", in.Status, contactStatuses); err != nil {
			return nil, err
		}
		contact.Status = in.Status
	}
	if in.Source != "" {
		if err := mustBeOneOf("source", in.Source, contactSources); err != nil {
			return nil, err
		}
		contact.Source = in.Source
	}
	tags := utils.NormalizeTags(in.Tags)
	contact.TagRows = models.NewContactTags(tags)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := phoneTaken(tx, t, contact.Phone, 0)
		if err != nil {
			return err
		}
		if taken {
			return conflict("a contact with phone %s already exists", contact.Phone)
		}
		return tx.Create(&contact).Error
	})
	if err != nil {
		return nil, err
	}
	contact.Tags = tags
	return &contact, nil
}

func (s *ContactService) Update(ctx context.Context, t Tenant, id uint, in UpdateContactInput) (*models.Contact, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contact, err := findContact(tx, t, id)
		if err != nil {
			return err
		}

		columns := []string{"updated_at"}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return invalid("name", "name cannot be empty")
			}
			contact.Name = name
			columns = append(columns, "name")
		}
		if in.Phone != nil {
			phone := strings.TrimSpace(*in.Phone)
			if phone == "" {
				return invalid("phone", "phone cannot be empty")
			}
			taken, err := phoneTaken(tx, t, phone, contact.ID)
			if err != nil {
				return err
			}
			if taken {
				return conflict("a contact with phone %s already exists", phone)
			}
			contact.Phone = phone
			columns = append(columns, "phone")
		}
		if in.Email != nil {
			email := strings.TrimSpace(*in.Email)
			if email != "" && !utils.IsValidEmail(email) {
				return invalid("email", "email must be a valid email address")
			}
			contact.Email = email
			columns = append(columns, "email")
		}
		if in.Company != nil {
			contact.Company = *in.Company
			columns = append(columns, "company")
		}
		if in.Status != nil {
			if err := mustBeOneOf("status", *in.Status, contactStatuses); err != nil {
				return err
			}
			contact.Status = *in.Status
			columns = append(columns, "status")
		}
		if in.Source != nil {
			if err := mustBeOneOf("source", *in.Source, contactSources); err != nil {
				return err
			}
			contact.Source = *in.Source
			columns = append(columns, "source")
		}
		if err := tx.Model(contact).Select(columns).Updates(contact).Error; err != nil {
			return err
		}
		if in.Tags != nil {
			return replaceTags(tx, contact.ID, utils.NormalizeTags(*in.Tags))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, t, id)
}

// Delete removes a contact together with its tags, attributes and every
// conversation held with it.
func (s *ContactService) Delete(ctx context.Context, t Tenant, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contact, err := findContact(tx, t, id)
		if err != nil {
			return err
		}

		conversations := tx.Model(&models.Conversation{}).Select("id").Where("contact_id = ?", contact.ID)
		if err := tx.Where("conversation_id IN (?)", conversations).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("conversation_id IN (?)", conversations).Delete(&models.ConversationNote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("conversation_id IN (?)", conversations).Delete(&models.ConversationParticipant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("contact_id = ?", contact.ID).Delete(&models.Conversation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("contact_id = ?", contact.ID).Delete(&models.ContactTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("contact_id = ?", contact.ID).Delete(&models.ContactAttribute{}).Error; err != nil {
			return err
		}
		return tx.Delete(contact).Error
	})
}

// checkAttributeValue makes sure value parses as the declared type.
func checkAttributeValue(attrType, value string) error {
	if value == "" {
		return nil
	}
	var err error
	switch attrType {
	case "number":
		_, err = strconv.ParseFloat(value, 64)
	case "boolean":
		_, err = strconv.ParseBool(value)
	case "date":
		if _, err = time.Parse("2006-01-02", value); err != nil {
			_, err = time.Parse(time.RFC3339, value)
		}
	}
	if err != nil {
		return invalid("value", "value is not a valid "+attrType)
	}
	return nil
}

func findAttribute(tx *gorm.DB, contactID, attributeID uint) (*models.ContactAttribute, error) {
	var attr models.ContactAttribute
	err := tx.Where("id = ? AND contact_id = ?", attributeID, contactID).First(&attr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("attribute")
	}
	if err != nil {
		return nil, err
	}
	return &attr, nil
}

func (s *ContactService) ListAttributes(ctx context.Context, t Tenant, contactID uint) ([]models.ContactAttribute, error) {
	db := s.db.WithContext(ctx)
	if _, err := findContact(db, t, contactID); err != nil {
		return nil, err
	}
	attrs := []models.ContactAttribute{}
	if err := db.Where("contact_id = ?", contactID).Order("name ASC").Find(&attrs).Error; err != nil {
		return nil, err
	}
	return attrs, nil
}

// SetAttribute creates the named attribute or, when the contact already has
// one with that name, overwrites its value. created reports which happened.
func (s *ContactService) SetAttribute(ctx context.Context, t Tenant, contactID uint, in AttributeInput) (attr *models.ContactAttribute, created bool, err error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, false, invalid("name", "name is required")
	}
	if in.Type != "" {
		if err := mustBeOneOf("type", in.Type, attributeTypes); err != nil {
			return nil, false, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findContact(tx, t, contactID); err != nil {
			return err
		}

		var existing models.ContactAttribute
		err := tx.Where("contact_id = ? AND name = ?", contactID, name).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			attrType := in.Type
			if attrType == "" {
				attrType = "text"
			}
			if err := checkAttributeValue(attrType, in.Value); err != nil {
				return err
			}
			attr = &models.ContactAttribute{ContactID: contactID, Name: name, Value: in.Value, Type: attrType}
			created = true
			return tx.Create(attr).Error
		case err != nil:
			return err
		}

		if in.Type != "" {
			existing.Type = in.Type
		}
		if err := checkAttributeValue(existing.Type, in.Value); err != nil {
			return err
		}
		existing.Value = in.Value
		attr = &existing
		return tx.Save(attr).Error
	})
	if err != nil {
		return nil, false, err
	}
	return attr, created, nil
}

func (s *ContactService) UpdateAttribute(ctx context.Context, t Tenant, contactID, attributeID uint, in UpdateAttributeInput) (*models.ContactAttribute, error) {
	var attr *models.ContactAttribute
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findContact(tx, t, contactID); err != nil {
			return err
		}
		var err error
		if attr, err = findAttribute(tx, contactID, attributeID); err != nil {
			return err
		}

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return invalid("name", "name cannot be empty")
			}
			if name != attr.Name {
				var count int64
				if err := tx.Model(&models.ContactAttribute{}).
					Where("contact_id = ? AND name = ?", contactID, name).
					Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					return conflict("attribute %s already exists", name)
				}
			}
			attr.Name = name
		}
		if in.Type != nil {
			if err := mustBeOneOf("type", *in.Type, attributeTypes); err != nil {
				return err
			}
			attr.Type = *in.Type
		}
		if in.Value != nil {
			attr.Value = *in.Value
		}
		if err := checkAttributeValue(attr.Type, attr.Value); err != nil {
			return err
		}
		return tx.Save(attr).Error
	})
	if err != nil {
		return nil, err
	}
	return attr, nil
}

func (s *ContactService) DeleteAttribute(ctx context.Context, t Tenant, contactID, attributeID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findContact(tx, t, contactID); err != nil {
			return err
		}
		attr, err := findAttribute(tx, contactID, attributeID)
		if err != nil {
			return err
		}
		return tx.Delete(attr).Error
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern builds a LIKE pattern matching term literally anywhere.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

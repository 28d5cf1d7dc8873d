package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"onethy/services"
	"onethy/utils"
)

type ContactController struct {
	Contacts *services.ContactService
	Logger   *logrus.Entry
}

func NewContactController(db *gorm.DB) *ContactController {
	return &ContactController{
		Contacts: services.NewContactService(db),
		Logger:   utils.Logger("contacts"),
	}
}

// GetContacts searches contacts. tags is a comma separated list; a contact
// matches when it carries any of them.
func (cc *ContactController) GetContacts(c *fiber.Ctx) error {
	filters := services.ContactFilters{
		Search: c.Query("search"),
		Status: c.Query("status"),
		Tags:   utils.SplitCSV(c.Query("tags")),
	}
	list, err := cc.Contacts.Search(c.UserContext(), tenantOf(c), filters, pageFromQuery(c))
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return c.JSON(list)
}

func (cc *ContactController) CreateContact(c *fiber.Ctx) error {
	var req services.CreateContactInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, cc.Logger, err)
	}
	contact, err := cc.Contacts.Create(c.UserContext(), tenantOf(c), req)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(contact)
}

func (cc *ContactController) GetContact(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	contact, err := cc.Contacts.Get(c.UserContext(), tenantOf(c), id)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return c.JSON(contact)
}

func (cc *ContactController) UpdateContact(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	var req services.UpdateContactInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, cc.Logger, err)
	}
	contact, err := cc.Contacts.Update(c.UserContext(), tenantOf(c), id, req)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return c.JSON(contact)
}

func (cc *ContactController) DeleteContact(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	if err := cc.Contacts.Delete(c.UserContext(), tenantOf(c), id); err != nil {
		return respondError(c, cc.Logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (cc *ContactController) GetAttributes(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	attrs, err := cc.Contacts.ListAttributes(c.UserContext(), tenantOf(c), id)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return c.JSON(attrs)
}

// SetAttribute answers 201 when the attribute is new and 200 when an
// attribute with the same name was overwritten.
func (cc *ContactController) SetAttribute(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	var req services.AttributeInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, cc.Logger, err)
	}
	attr, created, err := cc.Contacts.SetAttribute(c.UserContext(), tenantOf(c), id, req)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(attr)
}

func (cc *ContactController) UpdateAttribute(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	attributeID, err := idParam(c, "attributeId")
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	var req services.UpdateAttributeInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, cc.Logger, err)
	}
	attr, err := cc.Contacts.UpdateAttribute(c.UserContext(), tenantOf(c), id, attributeID, req)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return c.JSON(attr)
}

func (cc *ContactController) DeleteAttribute(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	attributeID, err := idParam(c, "attributeId")
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	if err := cc.Contacts.DeleteAttribute(c.UserContext(), tenantOf(c), id, attributeID); err != nil {
		return respondError(c, cc.Logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

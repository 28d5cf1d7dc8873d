package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"onethy/services"
	"onethy/utils"
)

type NoteController struct {
	Notes  *services.NoteService
	Logger *logrus.Entry
}

func NewNoteController(db *gorm.DB) *NoteController {
	return &NoteController{
		Notes:  services.NewNoteService(db),
		Logger: utils.Logger("notes"),
	}
}

func (nc *NoteController) GetNotes(c *fiber.Ctx) error {
	conversationID, err := idParam(c, "id")
	if err != nil {
		return respondError(c, nc.Logger, err)
	}
	list, err := nc.Notes.List(c.UserContext(), tenantOf(c), conversationID, pageFromQuery(c))
	if err != nil {
		return respondError(c, nc.Logger, err)
	}
	return c.JSON(list)
}

func (nc *NoteController) CreateNote(c *fiber.Ctx) error {
	conversationID, err := idParam(c, "id")
	if err != nil {
		return respondError(c, nc.Logger, err)
	}
	var req services.CreateNoteInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, nc.Logger, err)
	}
	note, err := nc.Notes.Create(c.UserContext(), tenantOf(c), conversationID, req)
	if err != nil {
		return respondError(c, nc.Logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

func (nc *NoteController) UpdateNote(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, nc.Logger, err)
	}
	var req services.UpdateNoteInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, nc.Logger, err)
	}
	note, err := nc.Notes.Update(c.UserContext(), tenantOf(c), id, req)
	if err != nil {
		return respondError(c, nc.Logger, err)
	}
	return c.JSON(note)
}

func (nc *NoteController) DeleteNote(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, nc.Logger, err)
	}
	if err := nc.Notes.Delete(c.UserContext(), tenantOf(c), id); err != nil {
		return respondError(c, nc.Logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

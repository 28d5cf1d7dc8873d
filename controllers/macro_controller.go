package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"onethy/services"
	"onethy/utils"
)

type MacroController struct {
	Macros *services.MacroService
	Logger *logrus.Entry
}

func NewMacroController(db *gorm.DB) *MacroController {
	return &MacroController{
		Macros: services.NewMacroService(db),
		Logger: utils.Logger("macros"),
	}
}

func (mc *MacroController) GetMacros(c *fiber.Ctx) error {
	list, err := mc.Macros.List(c.UserContext(), tenantOf(c), c.Query("shortcut"), pageFromQuery(c))
	if err != nil {
		return respondError(c, mc.Logger, err)
	}
	return c.JSON(list)
}

func (mc *MacroController) CreateMacro(c *fiber.Ctx) error {
	var req services.CreateMacroInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, mc.Logger, err)
	}
	macro, err := mc.Macros.Create(c.UserContext(), tenantOf(c), req)
	if err != nil {
		return respondError(c, mc.Logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(macro)
}

func (mc *MacroController) UpdateMacro(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, mc.Logger, err)
	}
	var req services.UpdateMacroInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, mc.Logger, err)
	}
	macro, err := mc.Macros.Update(c.UserContext(), tenantOf(c), id, req)
	if err != nil {
		return respondError(c, mc.Logger, err)
	}
	return c.JSON(macro)
}

func (mc *MacroController) DeleteMacro(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, mc.Logger, err)
	}
	if err := mc.Macros.Delete(c.UserContext(), tenantOf(c), id); err != nil {
		return respondError(c, mc.Logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ApplyMacro sends the macro into the conversation and returns the new message.
func (mc *MacroController) ApplyMacro(c *fiber.Ctx) error {
	conversationID, err := idParam(c, "id")
	if err != nil {
		return respondError(c, mc.Logger, err)
	}
	macroID, err := idParam(c, "macroId")
	if err != nil {
		return respondError(c, mc.Logger, err)
	}
	msg, err := mc.Macros.Apply(c.UserContext(), tenantOf(c), conversationID, macroID)
	if err != nil {
		return respondError(c, mc.Logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

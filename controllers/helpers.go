package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"onethy/middleware"
	"onethy/services"
	"onethy/utils"
)

// ErrorHandler is the Fiber fallback for errors no handler translated. It
// never exposes internal details.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	utils.LogError("unhandled_error", err, map[string]interface{}{
		"method": c.Method(),
		"path":   c.Path(),
	})
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}

// respondError maps service errors onto the HTTP error taxonomy.
func respondError(c *fiber.Ctx, log *logrus.Entry, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": verr.Message})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not allowed to do this"})
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	ctx := map[string]interface{}{
		"method": c.Method(),
		"path":   c.Path(),
	}
	if tenant, ok := middleware.CurrentTenant(c); ok {
		ctx["tenant_id"] = tenant.ID
		ctx["user_id"] = tenant.UserID
	}
	log.WithError(err).WithFields(ctx).Error("Request failed")
	utils.LogError("internal_error", err, ctx)
	component, _ := log.Data["component"].(string)
	utils.Registry().Errors.WithLabelValues(component).Inc()
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}

// parseBody decodes and validates a JSON request body.
func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return &services.ValidationError{Field: "body", Message: "Invalid request body"}
	}
	if err := utils.ValidateStruct(dst); err != nil {
		return &services.ValidationError{Field: "body", Message: err.Error()}
	}
	return nil
}

// idParam reads a positive numeric route parameter.
func idParam(c *fiber.Ctx, name string) (uint, error) {
	id := utils.ParseUint(c.Params(name))
	if id == 0 {
		return 0, &services.ValidationError{Field: name, Message: "Invalid " + name}
	}
	return id, nil
}

// pageFromQuery accepts either limit+offset or page+limit.
func pageFromQuery(c *fiber.Ctx) services.Page {
	p := services.Page{
		Limit:  c.QueryInt("limit", services.DefaultLimit),
		Offset: c.QueryInt("offset", 0),
	}.Normalize()
	if page := c.QueryInt("page", 0); page > 0 {
		p.Offset = (page - 1) * p.Limit
	}
	return p
}

func tenantOf(c *fiber.Ctx) services.Tenant {
	tenant, _ := middleware.CurrentTenant(c)
	return tenant
}

// Package controller holds helpers shared by the HTTP controllers
package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/svera/barrio/internal/webserver/model"
)

type Translator interface {
	T(lang, key string, values ...any) string
}

// Session returns the session stored by the authentication middleware
func Session(c *fiber.Ctx) model.Session {
	if session, ok := c.Locals("Session").(model.Session); ok {
		return session
	}
	return model.Session{}
}

func Lang(c *fiber.Ctx) string {
	if lang, ok := c.Locals("Lang").(string); ok {
		return lang
	}
	return "en"
}

// ValidationErrors answers with unprocessable entity, listing each field error translated
func ValidationErrors(c *fiber.Ctx, translator Translator, errs map[string]string) error {
	lang := Lang(c)
	translated := make(map[string]string, len(errs))
	for field, message := range errs {
		translated[field] = translator.T(lang, message)
	}
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": translated})
}

// ParamID parses the route parameter name as a database ID
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 0)
	if err != nil || id == 0 {
		return 0, fiber.ErrBadRequest
	}
	return uint(id), nil
}

// TenantID returns the tenant the request acts on: the session one, or for super admins, which
// have none, the one given in the tenant_id query parameter
func TenantID(c *fiber.Ctx) (uint, error) {
	session := Session(c)
	if session.HasTenant() {
		return session.TenantID, nil
	}
	if session.IsSuperAdmin {
		id, err := strconv.ParseUint(c.Query("tenant_id"), 10, 0)
		if err == nil && id > 0 {
			return uint(id), nil
		}
	}
	return 0, fiber.ErrBadRequest
}

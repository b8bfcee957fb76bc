package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/svera/barrio/internal/webserver/controller"
	"github.com/svera/barrio/internal/webserver/model"
)

// Current answers with the session the request runs under
func (a *Controller) Current(c *fiber.Ctx) error {
	return c.JSON(controller.Session(c))
}

// Refresh issues a new token with the session rebuilt from the ledger, keeping the active tenant
// if the identity still belongs to it
func (a *Controller) Refresh(c *fiber.Ctx) error {
	current := controller.Session(c)

	session, err := a.resolver.Resolve(c.UserContext(), current.Email, current.TenantID)
	if errors.Is(err, model.ErrAuthentication) {
		clearCookie(c)
	}
	if err != nil {
		return err
	}

	return a.StartSession(c, session)
}

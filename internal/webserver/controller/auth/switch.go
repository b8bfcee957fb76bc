package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"github.com/svera/barrio/internal/webserver/controller"
	"github.com/svera/barrio/internal/webserver/model"
)

type tenantSwitch struct {
	TenantID uint `json:"tenant_id" form:"tenant_id"`
}

// SwitchTenant makes the given tenant the active one. Identities that do not belong to it yet
// join it as residents; no membership is ever removed by switching. Deactivated tenants cannot
// be switched to.
func (a *Controller) SwitchTenant(c *fiber.Ctx) error {
	var form tenantSwitch
	if err := c.BodyParser(&form); err != nil || form.TenantID == 0 {
		return fiber.ErrBadRequest
	}

	tenant, err := a.tenants.FindActive(c.UserContext(), form.TenantID)
	if err != nil {
		return err
	}
	if tenant == nil {
		return model.ErrUnknownTenant
	}

	current := controller.Session(c)
	if !current.IsSuperAdmin {
		if err := a.ensureMembership(c, current, form.TenantID); err != nil {
			return err
		}
	}

	session, err := a.resolver.Resolve(c.UserContext(), current.Email, form.TenantID)
	if err != nil {
		return err
	}
	return a.StartSession(c, session)
}

func (a *Controller) ensureMembership(c *fiber.Ctx, session model.Session, tenantID uint) error {
	membership, err := a.ledger.FindByIdentityAndTenant(c.UserContext(), session.IdentityID, tenantID)
	if err != nil || membership != nil {
		return err
	}

	_, err = a.ledger.CreateMembership(c.UserContext(), session.IdentityID, tenantID, model.NewRoleSet(model.RoleResident))
	if errors.Is(err, model.ErrDuplicateMembership) {
		return nil
	}
	if err != nil {
		return err
	}

	log.WithField("identity", session.IdentityUuid).WithField("tenant", tenantID).Info("identity joined tenant on switch")
	return nil
}

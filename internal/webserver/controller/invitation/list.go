package invitation

import (
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"github.com/svera/barrio/internal/authz"
	"github.com/svera/barrio/internal/webserver/controller"
	"github.com/svera/barrio/internal/webserver/model"
)

// List answers with the invitations of the active tenant, newest first
func (i *Controller) List(c *fiber.Ctx) error {
	tenantID, err := i.administeredTenant(c)
	if err != nil {
		return err
	}
	invitations, err := i.registry.List(c.UserContext(), tenantID)
	if err != nil {
		return err
	}
	return c.JSON(invitations)
}

// Reap stores the expired status on the pending invitations of the active tenant past their expiry
func (i *Controller) Reap(c *fiber.Ctx) error {
	tenantID, err := i.administeredTenant(c)
	if err != nil {
		return err
	}
	reaped, err := i.registry.Reap(c.UserContext(), tenantID)
	if err != nil {
		return err
	}

	log.WithField("tenant", tenantID).WithField("reaped", reaped).Info("expired invitations reaped")
	return c.JSON(fiber.Map{"reaped": reaped})
}

// administeredTenant returns the tenant the request acts on if the session administers it
// according to the ledger
func (i *Controller) administeredTenant(c *fiber.Ctx) (uint, error) {
	tenantID, err := controller.TenantID(c)
	if err != nil {
		return 0, err
	}
	session := controller.Session(c)
	if session.IsSuperAdmin {
		return tenantID, nil
	}

	membership, err := i.ledger.FindByIdentityAndTenant(c.UserContext(), session.IdentityID, tenantID)
	if err != nil {
		return 0, err
	}
	if membership == nil || !authz.HasCapability(authz.MembershipSession(*membership), authz.Admin) {
		return 0, model.ErrUnauthorized
	}
	return tenantID, nil
}

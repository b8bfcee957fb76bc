package membership

import (
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"github.com/svera/barrio/internal/webserver/controller"
	"github.com/svera/barrio/internal/webserver/model"
)

type rolesForm struct {
	Roles []string `json:"roles" form:"roles"`
}

type profileForm struct {
	Address string `json:"address" form:"address"`
	Skills  string `json:"skills" form:"skills"`
}

// SetRoles replaces the roles of a membership of the active tenant
func (m *Controller) SetRoles(c *fiber.Ctx) error {
	var form rolesForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	roles, err := model.ParseRoleSet(form.Roles)
	if err != nil {
		return err
	}

	target, err := m.target(c)
	if err != nil {
		return err
	}
	membership, err := m.ledger.SetActiveRole(c.UserContext(), target.ID, roles)
	if err != nil {
		return err
	}

	log.WithField("membership", membership.Uuid).WithField("roles", membership.Roles.Strings()).Info("membership roles changed")
	return c.JSON(newMember(*membership))
}

// UpdateProfile stores the profile of the session identity in its active tenant
func (m *Controller) UpdateProfile(c *fiber.Ctx) error {
	var form profileForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}

	session := controller.Session(c)
	own, err := m.ledger.FindByIdentityAndTenant(c.UserContext(), session.IdentityID, session.TenantID)
	if err != nil {
		return err
	}
	if own == nil {
		return model.ErrMembershipNotFound
	}

	membership, err := m.ledger.UpdateProfile(c.UserContext(), own.ID, form.Address, form.Skills)
	if err != nil {
		return err
	}
	return c.JSON(newMember(*membership))
}

// Delete removes a membership of the active tenant. The identity itself is kept.
func (m *Controller) Delete(c *fiber.Ctx) error {
	target, err := m.target(c)
	if err != nil {
		return err
	}
	if err := m.ledger.RemoveMembership(c.UserContext(), target.ID); err != nil {
		return err
	}

	log.WithField("membership", target.Uuid).WithField("tenant", target.TenantID).Info("membership removed")
	return c.SendStatus(fiber.StatusNoContent)
}

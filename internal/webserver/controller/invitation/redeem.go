package invitation

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/svera/barrio/internal/invitation"
	"github.com/svera/barrio/internal/webserver/controller"
	"github.com/svera/barrio/internal/webserver/model"
)

type invitationDetails struct {
	TenantID  uint   `json:"tenant_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	ExpiresAt string `json:"expires_at,omitempty"`
	// Registered tells whether the invited email already has an identity, in which case
	// redeeming requires its password instead of a new name and password
	Registered bool `json:"registered"`
}

type redeemForm struct {
	Name     string `json:"name" form:"name"`
	Password string `json:"password" form:"password"`
}

// Validate tells whether the code in the route can still be redeemed
func (i *Controller) Validate(c *fiber.Ctx) error {
	found, err := i.registry.Validate(c.UserContext(), c.Params("code"))
	if err != nil {
		return err
	}
	identity, err := i.identities.FindByEmail(c.UserContext(), found.Email)
	if err != nil {
		return err
	}

	details := invitationDetails{
		TenantID:   found.TenantID,
		Email:      found.Email,
		Role:       string(found.Role),
		Registered: identity != nil,
	}
	if found.ExpiresAt != nil {
		details.ExpiresAt = found.ExpiresAt.Format(time.RFC3339)
	}
	return c.JSON(details)
}

// Redeem uses the code in the route to join its tenant, and signs the new member in with that
// tenant active
func (i *Controller) Redeem(c *fiber.Ctx) error {
	var form redeemForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	ctx := c.UserContext()

	found, err := i.registry.Validate(ctx, c.Params("code"))
	if err != nil {
		return err
	}
	existing, err := i.identities.FindByEmail(ctx, found.Email)
	if err != nil {
		return err
	}
	if existing == nil {
		candidate := model.Identity{Name: form.Name, Email: found.Email, Password: form.Password}
		if errs := candidate.Validate(i.config.MinPasswordLength); len(errs) > 0 {
			return controller.ValidationErrors(c, i.translator, errs)
		}
	}

	identity, membership, err := i.registry.Enrol(ctx, c.Params("code"), invitation.Registration{
		Name:     form.Name,
		Password: form.Password,
	})
	if err != nil {
		return err
	}

	session, err := i.resolver.Resolve(ctx, identity.Email, membership.TenantID)
	if err != nil {
		return err
	}
	c.Status(fiber.StatusCreated)
	return i.sessions.StartSession(c, session)
}

package tenant

import (
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"github.com/svera/barrio/internal/webserver/controller"
	"github.com/svera/barrio/internal/webserver/model"
)

type registrationForm struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Register makes the requester a resident of the tenant identified by the slug route parameter
// and signs them in. New identities are created from the form; existing ones must give their
// current password.
func (t *Controller) Register(c *fiber.Ctx) error {
	var form registrationForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	ctx := c.UserContext()

	tenant, err := t.store.Tenants().FindBySlug(ctx, c.Params("slug"))
	if err != nil {
		return err
	}
	if tenant == nil || !tenant.Active {
		return model.ErrUnknownTenant
	}

	existing, err := t.store.Identities().FindByEmail(ctx, form.Email)
	if err != nil {
		return err
	}
	if existing == nil {
		candidate := model.Identity{Name: form.Name, Email: form.Email, Password: form.Password}
		if errs := candidate.Validate(t.config.MinPasswordLength); len(errs) > 0 {
			return controller.ValidationErrors(c, t.translator, errs)
		}
	}

	var identity *model.Identity
	err = t.store.Transaction(ctx, func(tx *model.Store) error {
		identity, _, err = tx.Join(ctx, form.Email, form.Name, form.Password, tenant.ID, model.NewRoleSet(model.RoleResident))
		return err
	})
	if err != nil {
		return err
	}

	log.WithField("identity", identity.Uuid).WithField("tenant", tenant.Slug).Info("identity registered in tenant")

	session, err := t.resolver.Resolve(ctx, identity.Email, tenant.ID)
	if err != nil {
		return err
	}
	c.Status(fiber.StatusCreated)
	return t.sessions.StartSession(c, session)
}

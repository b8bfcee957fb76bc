package tenant

import (
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"github.com/svera/barrio/internal/webserver/controller"
	"github.com/svera/barrio/internal/webserver/model"
)

type tenantForm struct {
	Name string `json:"name" form:"name"`
	Slug string `json:"slug" form:"slug"`
}

// List answers with every active tenant
func (t *Controller) List(c *fiber.Ctx) error {
	tenants, err := t.store.Tenants().ListActive(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(tenants)
}

func (t *Controller) Create(c *fiber.Ctx) error {
	var form tenantForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	if form.Name == "" {
		return controller.ValidationErrors(c, t.translator, map[string]string{"name": "Name cannot be empty"})
	}

	tenant := &model.Tenant{Name: form.Name, Slug: form.Slug}
	if err := t.store.Tenants().Create(c.UserContext(), tenant); err != nil {
		return err
	}

	log.WithField("tenant", tenant.Slug).Info("tenant created")
	return c.Status(fiber.StatusCreated).JSON(tenant)
}

// Deactivate hides a tenant from sign ins, registrations and invitations. Its memberships are kept.
func (t *Controller) Deactivate(c *fiber.Ctx) error {
	id, err := controller.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err := t.store.Tenants().Deactivate(c.UserContext(), id); err != nil {
		return err
	}

	log.WithField("tenant", id).Info("tenant deactivated")
	return c.SendStatus(fiber.StatusNoContent)
}

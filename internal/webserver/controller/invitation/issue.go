package invitation

import (
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"github.com/svera/barrio/internal/invitation"
	"github.com/svera/barrio/internal/webserver/controller"
)

type bulkForm struct {
	Invitations []invitation.Entry `json:"invitations"`
}

type bulkResult struct {
	Email      string `json:"email"`
	Code       string `json:"code,omitempty"`
	Error      string `json:"error,omitempty"`
	Successful bool   `json:"successful"`
}

// Issue invites one person into the active tenant
func (i *Controller) Issue(c *fiber.Ctx) error {
	var entry invitation.Entry
	if err := c.BodyParser(&entry); err != nil {
		return fiber.ErrBadRequest
	}

	issuer, tenantID, err := i.issuer(c)
	if err != nil {
		return err
	}

	issued, err := i.registry.Issue(c.UserContext(), tenantID, entry.Email, entry.Role, issuer)
	if err != nil {
		return err
	}

	log.WithField("tenant", tenantID).WithField("email", issued.Email).Info("invitation issued")
	return c.Status(fiber.StatusCreated).JSON(issued)
}

// IssueBulk invites several people at once. Every entry succeeds or fails on its own, the outcome
// of each one is reported in the same order they were sent.
func (i *Controller) IssueBulk(c *fiber.Ctx) error {
	var form bulkForm
	if err := c.BodyParser(&form); err != nil || len(form.Invitations) == 0 {
		return fiber.ErrBadRequest
	}

	issuer, tenantID, err := i.issuer(c)
	if err != nil {
		return err
	}

	results, err := i.registry.IssueBulk(c.UserContext(), tenantID, form.Invitations, issuer)
	if err != nil {
		return err
	}

	response := make([]bulkResult, len(results))
	issued := 0
	for n, result := range results {
		response[n].Email = result.Entry.Email
		if result.Err != nil {
			_, message, _ := controller.ErrorResponse(result.Err)
			response[n].Error = i.translator.T(controller.Lang(c), message)
			continue
		}
		response[n].Code = result.Invitation.Code
		response[n].Successful = true
		issued++
	}

	log.WithField("tenant", tenantID).WithField("issued", issued).WithField("requested", len(results)).Info("bulk invitations issued")
	return c.Status(fiber.StatusMultiStatus).JSON(response)
}

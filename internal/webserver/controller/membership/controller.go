package membership

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/svera/barrio/internal/authz"
	"github.com/svera/barrio/internal/webserver/controller"
	"github.com/svera/barrio/internal/webserver/model"
)

type ledger interface {
	FindMemberships(ctx context.Context, identityID uint) ([]model.Membership, error)
	FindMembership(ctx context.Context, membershipID uint) (*model.Membership, error)
	FindByIdentityAndTenant(ctx context.Context, identityID, tenantID uint) (*model.Membership, error)
	FindByTenant(ctx context.Context, tenantID uint, page, pageSize int) ([]model.Membership, int64, error)
	SetActiveRole(ctx context.Context, membershipID uint, roles model.RoleSet) (*model.Membership, error)
	UpdateProfile(ctx context.Context, membershipID uint, address, skills string) (*model.Membership, error)
	RemoveMembership(ctx context.Context, membershipID uint) error
}

type Controller struct {
	ledger ledger
}

func NewController(ledger ledger) *Controller {
	return &Controller{
		ledger: ledger,
	}
}

// target loads the membership named by the id route parameter, checking that the session
// currently administers its tenant. Admin rights are read from the ledger, not from the token.
func (m *Controller) target(c *fiber.Ctx) (*model.Membership, error) {
	id, err := controller.ParamID(c, "id")
	if err != nil {
		return nil, err
	}
	membership, err := m.ledger.FindMembership(c.UserContext(), id)
	if err != nil {
		return nil, err
	}

	session := controller.Session(c)
	if session.IsSuperAdmin {
		return membership, nil
	}
	if membership.TenantID != session.TenantID {
		return nil, model.ErrUnauthorized
	}
	if err := m.ensureAdmin(c, session, membership.TenantID); err != nil {
		return nil, err
	}
	return membership, nil
}

// administeredTenant returns the tenant the request acts on if the session administers it
// according to the ledger
func (m *Controller) administeredTenant(c *fiber.Ctx) (uint, error) {
	tenantID, err := controller.TenantID(c)
	if err != nil {
		return 0, err
	}
	session := controller.Session(c)
	if session.IsSuperAdmin {
		return tenantID, nil
	}
	if err := m.ensureAdmin(c, session, tenantID); err != nil {
		return 0, err
	}
	return tenantID, nil
}

func (m *Controller) ensureAdmin(c *fiber.Ctx, session model.Session, tenantID uint) error {
	actor, err := m.ledger.FindByIdentityAndTenant(c.UserContext(), session.IdentityID, tenantID)
	if err != nil {
		return err
	}
	if actor == nil || !authz.HasCapability(authz.MembershipSession(*actor), authz.Admin) {
		return model.ErrUnauthorized
	}
	return nil
}

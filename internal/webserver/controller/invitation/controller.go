package invitation

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/svera/barrio/internal/invitation"
	"github.com/svera/barrio/internal/webserver/controller"
	"github.com/svera/barrio/internal/webserver/model"
)

type registry interface {
	Issue(ctx context.Context, tenantID uint, email string, role model.Role, issuer invitation.Issuer) (*model.InvitationCode, error)
	IssueBulk(ctx context.Context, tenantID uint, entries []invitation.Entry, issuer invitation.Issuer) ([]invitation.Result, error)
	Validate(ctx context.Context, code string) (*model.InvitationCode, error)
	Enrol(ctx context.Context, code string, registration invitation.Registration) (*model.Identity, *model.Membership, error)
	Reap(ctx context.Context, tenantID uint) (int64, error)
	List(ctx context.Context, tenantID uint) ([]model.InvitationCode, error)
}

type identityFinder interface {
	FindByEmail(ctx context.Context, email string) (*model.Identity, error)
}

type ledger interface {
	FindByIdentityAndTenant(ctx context.Context, identityID, tenantID uint) (*model.Membership, error)
}

type resolver interface {
	Resolve(ctx context.Context, email string, priorTenantID uint) (model.Session, error)
}

type sessionStarter interface {
	StartSession(c *fiber.Ctx, session model.Session) error
}

type Config struct {
	MinPasswordLength int
}

type Controller struct {
	registry   registry
	identities identityFinder
	ledger     ledger
	resolver   resolver
	sessions   sessionStarter
	translator controller.Translator
	config     Config
}

func NewController(registry registry, identities identityFinder, ledger ledger, resolver resolver, sessions sessionStarter, translator controller.Translator, cfg Config) *Controller {
	return &Controller{
		registry:   registry,
		identities: identities,
		ledger:     ledger,
		resolver:   resolver,
		sessions:   sessions,
		translator: translator,
		config:     cfg,
	}
}

// issuer returns who is issuing invitations on behalf of the session, and in which tenant
func (i *Controller) issuer(c *fiber.Ctx) (invitation.Issuer, uint, error) {
	tenantID, err := controller.TenantID(c)
	if err != nil {
		return invitation.Issuer{}, 0, err
	}

	session := controller.Session(c)
	if session.IsSuperAdmin {
		return invitation.Issuer{SuperAdmin: true}, tenantID, nil
	}

	membership, err := i.ledger.FindByIdentityAndTenant(c.UserContext(), session.IdentityID, tenantID)
	if err != nil {
		return invitation.Issuer{}, 0, err
	}
	if membership == nil {
		return invitation.Issuer{}, 0, model.ErrUnauthorized
	}
	return invitation.Issuer{MembershipID: membership.ID}, tenantID, nil
}

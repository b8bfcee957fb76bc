package auth

import (
	"context"
	"time"

	"github.com/svera/barrio/internal/webserver/model"
)

// CookieName is the cookie carrying the session token
const CookieName = "barrio"

type authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*model.Identity, error)
}

type resolver interface {
	Resolve(ctx context.Context, email string, priorTenantID uint) (model.Session, error)
}

type ledger interface {
	FindByIdentityAndTenant(ctx context.Context, identityID, tenantID uint) (*model.Membership, error)
	CreateMembership(ctx context.Context, identityID, tenantID uint, roles model.RoleSet) (*model.Membership, error)
}

type tenantDirectory interface {
	FindActive(ctx context.Context, id uint) (*model.Tenant, error)
}

type Controller struct {
	identities authenticator
	resolver   resolver
	ledger     ledger
	tenants    tenantDirectory
	config     Config
}

type Config struct {
	Secret         []byte
	SessionTimeout time.Duration
}

func NewController(identities authenticator, resolver resolver, ledger ledger, tenants tenantDirectory, cfg Config) *Controller {
	return &Controller{
		identities: identities,
		resolver:   resolver,
		ledger:     ledger,
		tenants:    tenants,
		config:     cfg,
	}
}

// Package session turns a verified identity into the tenant and role context its requests
// run under.
package session

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"github.com/svera/barrio/internal/authz"
	"github.com/svera/barrio/internal/webserver/model"
)

type identityFinder interface {
	FindByEmail(ctx context.Context, email string) (*model.Identity, error)
}

type ledger interface {
	FindMemberships(ctx context.Context, identityID uint) ([]model.Membership, error)
	CreateMembership(ctx context.Context, identityID, tenantID uint, roles model.RoleSet) (*model.Membership, error)
}

type tenantDirectory interface {
	FirstActive(ctx context.Context) (*model.Tenant, error)
}

// Resolver builds sessions. It runs on every sign in and token refresh and never caches, so
// role changes are picked up by the next refresh.
type Resolver struct {
	identities identityFinder
	ledger     ledger
	tenants    tenantDirectory
	policy     Policy
}

func NewResolver(identities identityFinder, ledger ledger, tenants tenantDirectory, policy Policy) *Resolver {
	if policy == nil {
		policy = NewAllowList()
	}
	return &Resolver{
		identities: identities,
		ledger:     ledger,
		tenants:    tenants,
		policy:     policy,
	}
}

// Resolve returns the session for the identity owning email. priorTenantID is the tenant
// active in the previous session, if any; it stays active as long as the identity is still
// a member of it.
//
// Identities without memberships are joined to the oldest active tenant as residents. Memberships
// in deactivated tenants are never made active; if none is left the session has no tenant.
func (r *Resolver) Resolve(ctx context.Context, email string, priorTenantID uint) (model.Session, error) {
	identity, err := r.identities.FindByEmail(ctx, email)
	if err != nil {
		return model.Session{}, err
	}
	if identity == nil {
		return model.Session{}, model.ErrAuthentication
	}

	session := model.Session{
		IdentityID:   identity.ID,
		IdentityUuid: identity.Uuid,
		Email:        identity.Email,
		Name:         identity.Name,
	}

	if r.policy.Escalates(identity.Email) {
		session.IsSuperAdmin = true
		return authz.WithFlags(session), nil
	}

	memberships, err := r.ledger.FindMemberships(ctx, identity.ID)
	if err != nil {
		return model.Session{}, err
	}

	if len(memberships) == 0 {
		if memberships, err = r.join(ctx, identity); err != nil {
			return model.Session{}, err
		}
	}

	memberships = inActiveTenants(memberships)
	if len(memberships) == 0 {
		return session, nil
	}

	active := memberships[0]
	for _, membership := range memberships {
		if priorTenantID != 0 && membership.TenantID == priorTenantID {
			active = membership
			break
		}
	}

	view := active.RoleView()
	session.TenantID = active.TenantID
	session.Roles = view.Set().Strings()
	session.Role = string(view.Primary())
	return authz.WithFlags(session), nil
}

// join makes an orphan identity a resident of the oldest active tenant
func (r *Resolver) join(ctx context.Context, identity *model.Identity) ([]model.Membership, error) {
	tenant, err := r.tenants.FirstActive(ctx)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		log.WithField("identity", identity.Uuid).Warn("no active tenant to join, session will have no tenant")
		return nil, nil
	}

	membership, err := r.ledger.CreateMembership(ctx, identity.ID, tenant.ID, model.NewRoleSet(model.RoleResident))
	if errors.Is(err, model.ErrDuplicateMembership) || errors.Is(err, model.ErrUnknownTenant) {
		// Another refresh joined first, or the tenant went away meanwhile
		return r.ledger.FindMemberships(ctx, identity.ID)
	}
	if err != nil {
		return nil, err
	}

	log.WithField("identity", identity.Uuid).WithField("tenant", tenant.Slug).WithField("membership", membership.ID).Info("orphan identity joined tenant")
	return r.ledger.FindMemberships(ctx, identity.ID)
}

func inActiveTenants(memberships []model.Membership) []model.Membership {
	active := make([]model.Membership, 0, len(memberships))
	for _, membership := range memberships {
		if membership.Tenant.Active {
			active = append(active, membership)
		}
	}
	return active
}

// Package invitation issues and redeems the codes that turn an email into a tenant member.
//
// A code is pending until it is redeemed, which marks it as used for good. Codes past their
// expiry date keep their pending status until reaped, but are rejected as expired.
package invitation

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/svera/barrio/internal/authz"
	"github.com/svera/barrio/internal/webserver/model"
	"golang.org/x/sync/errgroup"
)

// maxAttempts bounds how many codes are drawn when they collide with existing ones
const maxAttempts = 5

// Notifier delivers an issued invitation to its recipient
type Notifier interface {
	InvitationIssued(invitation model.InvitationCode, tenant model.Tenant, lang string) error
}

type Config struct {
	// Timeout is how long codes stay valid. Zero means they never expire.
	Timeout time.Duration
	// Lang is the language invitation emails are written in
	Lang      string
	Generator Generator
	Clock     func() time.Time
}

// Issuer identifies who is issuing invitations: either a membership, which must hold the admin
// role in the target tenant, or a super admin.
type Issuer struct {
	MembershipID uint
	SuperAdmin   bool
}

// Entry is one invitation to issue
type Entry struct {
	Email string     `json:"email" form:"email"`
	Role  model.Role `json:"role" form:"role"`
}

// Result is the outcome of issuing one entry of a bulk request
type Result struct {
	Entry      Entry
	Invitation *model.InvitationCode
	Err        error
}

// Registration holds the credentials of whoever redeems an invitation. They create the
// identity if the invited email has none, or must authenticate it otherwise.
type Registration struct {
	Name     string
	Password string
}

type Registry struct {
	store    *model.Store
	notifier Notifier
	config   Config
}

func NewRegistry(store *model.Store, notifier Notifier, cfg Config) *Registry {
	if cfg.Generator == nil {
		cfg.Generator = RandomCode
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Registry{
		store:    store,
		notifier: notifier,
		config:   cfg,
	}
}

// Issue creates a pending invitation to tenantID for email with role, and notifies it.
// Notification failures are logged but do not undo the invitation.
func (r *Registry) Issue(ctx context.Context, tenantID uint, email string, role model.Role, issuer Issuer) (*model.InvitationCode, error) {
	tenant, creatorID, err := r.authorize(ctx, tenantID, issuer)
	if err != nil {
		return nil, err
	}
	return r.issue(ctx, tenant, creatorID, Entry{Email: email, Role: role})
}

// IssueBulk checks the issuer once and then issues every entry independently. A failing entry
// does not affect the others; each outcome is reported in the result with the same index.
func (r *Registry) IssueBulk(ctx context.Context, tenantID uint, entries []Entry, issuer Issuer) ([]Result, error) {
	tenant, creatorID, err := r.authorize(ctx, tenantID, issuer)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(entries))
	for i, entry := range entries {
		results[i].Entry = entry
		results[i].Invitation, results[i].Err = r.issue(ctx, tenant, creatorID, entry)
	}
	return results, nil
}

// Validate returns the invitation for code if it can still be redeemed. Codes that cannot have
// been issued are rejected without querying the datastore.
func (r *Registry) Validate(ctx context.Context, code string) (*model.InvitationCode, error) {
	if !ValidCode(code) {
		return nil, model.ErrInvitationNotFound
	}
	invitation, err := r.store.Invitations().FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if invitation == nil {
		return nil, model.ErrInvitationNotFound
	}
	if err := invitation.Check(r.now()); err != nil {
		return nil, err
	}
	return invitation, nil
}

// Redeem marks the invitation as used and returns the membership it grants. Among concurrent
// redemptions of the same code only one succeeds; the rest get model.ErrInvitationUsed.
func (r *Registry) Redeem(ctx context.Context, code string) (*model.MembershipRequest, error) {
	var request *model.MembershipRequest
	err := r.store.Transaction(ctx, func(tx *model.Store) error {
		var err error
		request, err = r.redeem(ctx, tx, code)
		return err
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Enrol redeems code and creates the membership it grants in the same transaction, so the code
// stays pending if the membership cannot be created.
func (r *Registry) Enrol(ctx context.Context, code string, registration Registration) (*model.Identity, *model.Membership, error) {
	var (
		identity   *model.Identity
		membership *model.Membership
	)

	err := r.store.Transaction(ctx, func(tx *model.Store) error {
		request, err := r.redeem(ctx, tx, code)
		if err != nil {
			return err
		}

		identity, membership, err = tx.Join(ctx, request.Email, registration.Name, registration.Password, request.TenantID, request.Roles)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	log.WithField("identity", identity.Uuid).WithField("tenant", membership.TenantID).Info("invitation redeemed")
	return identity, membership, nil
}

// Reap stores the expired status on the tenant's pending invitations past their expiry date
func (r *Registry) Reap(ctx context.Context, tenantID uint) (int64, error) {
	return r.store.Invitations().ReapExpired(ctx, tenantID, r.now())
}

func (r *Registry) List(ctx context.Context, tenantID uint) ([]model.InvitationCode, error) {
	return r.store.Invitations().ListByTenant(ctx, tenantID)
}

func (r *Registry) redeem(ctx context.Context, tx *model.Store, code string) (*model.MembershipRequest, error) {
	if !ValidCode(code) {
		return nil, model.ErrInvitationNotFound
	}
	invitation, err := tx.Invitations().FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if invitation == nil {
		return nil, model.ErrInvitationNotFound
	}
	now := r.now()
	if err := invitation.Check(now); err != nil {
		return nil, err
	}

	flipped, err := tx.Invitations().MarkUsed(ctx, invitation.ID, now)
	if err != nil {
		return nil, err
	}
	if !flipped {
		return nil, model.ErrInvitationUsed
	}

	return &model.MembershipRequest{
		InvitationID: invitation.ID,
		TenantID:     invitation.TenantID,
		Email:        invitation.Email,
		Roles:        model.NewRoleSet(invitation.Role),
	}, nil
}

// authorize checks that issuer may invite people into tenantID, which must be active. It returns
// the tenant and the membership to record as creator, nil for super admins.
func (r *Registry) authorize(ctx context.Context, tenantID uint, issuer Issuer) (*model.Tenant, *uint, error) {
	var (
		tenant     *model.Tenant
		membership *model.Membership
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		tenant, err = r.store.Tenants().FindActive(groupCtx, tenantID)
		return err
	})
	if !issuer.SuperAdmin {
		group.Go(func() error {
			var err error
			membership, err = r.store.Memberships().FindMembership(groupCtx, issuer.MembershipID)
			if errors.Is(err, model.ErrMembershipNotFound) {
				return model.ErrUnauthorized
			}
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	if tenant == nil {
		return nil, nil, model.ErrUnknownTenant
	}
	if issuer.SuperAdmin {
		return tenant, nil, nil
	}
	if membership.TenantID != tenantID || !authz.HasCapability(authz.MembershipSession(*membership), authz.Admin) {
		return nil, nil, model.ErrUnauthorized
	}
	return tenant, &membership.ID, nil
}

func (r *Registry) issue(ctx context.Context, tenant *model.Tenant, creatorID *uint, entry Entry) (*model.InvitationCode, error) {
	email, err := model.ValidateEmail(entry.Email)
	if err != nil {
		return nil, err
	}
	role, ok := model.ParseRole(string(entry.Role))
	if !ok {
		return nil, model.ErrInvalidRole
	}

	if err := r.ensureNotMember(ctx, tenant.ID, email); err != nil {
		return nil, err
	}
	now := r.now()
	pending, err := r.store.Invitations().HasLivePending(ctx, tenant.ID, email, now)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, model.ErrPendingInvitation
	}

	invitation := &model.InvitationCode{
		TenantID:            tenant.ID,
		Email:               email,
		Role:                role,
		Status:              model.InvitationPending,
		CreatorMembershipID: creatorID,
	}
	if r.config.Timeout > 0 {
		expiresAt := now.Add(r.config.Timeout).UTC()
		invitation.ExpiresAt = &expiresAt
	}

	if err := r.persist(ctx, invitation); err != nil {
		return nil, err
	}

	if r.notifier != nil {
		if err := r.notifier.InvitationIssued(*invitation, *tenant, r.config.Lang); err != nil {
			log.WithError(err).WithField("email", email).Warn("invitation issued but could not be delivered")
		}
	}
	return invitation, nil
}

// persist stores invitation under a fresh code, drawing again when the code is already taken
func (r *Registry) persist(ctx context.Context, invitation *model.InvitationCode) error {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code, err := r.config.Generator()
		if err != nil {
			return err
		}
		invitation.ID = 0
		invitation.Code = code

		err = r.store.Invitations().Create(ctx, invitation)
		if errors.Is(err, model.ErrCodeTaken) {
			log.WithField("attempt", attempt+1).Debug("invitation code collision")
			continue
		}
		return err
	}
	return model.ErrCodeSpaceExhausted
}

func (r *Registry) ensureNotMember(ctx context.Context, tenantID uint, email string) error {
	identity, err := r.store.Identities().FindByEmail(ctx, email)
	if err != nil || identity == nil {
		return err
	}
	membership, err := r.store.Memberships().FindByIdentityAndTenant(ctx, identity.ID, tenantID)
	if err != nil {
		return err
	}
	if membership != nil {
		return model.ErrDuplicateMembership
	}
	return nil
}

func (r *Registry) now() time.Time {
	return r.config.Clock().UTC()
}

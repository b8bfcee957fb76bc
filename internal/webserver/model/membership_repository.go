package model

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MembershipRepository is the membership ledger
type MembershipRepository struct {
	DB *gorm.DB
}

// FindMemberships returns every membership of an identity with its tenant, oldest first.
// Memberships in deactivated tenants are included.
func (r *MembershipRepository) FindMemberships(ctx context.Context, identityID uint) ([]Membership, error) {
	var memberships []Membership

	if err := r.DB.WithContext(ctx).Preload("Tenant").Where("identity_id = ?", identityID).Order("id ASC").Find(&memberships).Error; err != nil {
		log.WithError(err).WithField("identity", identityID).Error("error listing memberships")
		return nil, datastoreError(err)
	}
	return memberships, nil
}

// CreateMembership binds an identity to an active tenant. At most one membership can exist
// per identity and tenant; the unique index makes concurrent attempts fail with
// ErrDuplicateMembership.
func (r *MembershipRepository) CreateMembership(ctx context.Context, identityID, tenantID uint, roles RoleSet) (*Membership, error) {
	if len(NewRoleSet(roles...)) == 0 {
		return nil, ErrEmptyRoleSet
	}

	tenants := TenantRepository{DB: r.DB}
	tenant, err := tenants.FindActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrUnknownTenant
	}

	membership := &Membership{
		Uuid:       uuid.NewString(),
		IdentityID: identityID,
		TenantID:   tenantID,
		Roles:      roles,
		JoinedAt:   time.Now().UTC(),
	}
	if err := r.DB.WithContext(ctx).Create(membership).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateMembership
		}
		log.WithError(err).WithField("identity", identityID).WithField("tenant", tenantID).Error("error creating membership")
		return nil, datastoreError(err)
	}
	return membership, nil
}

// SetActiveRole replaces the roles of a membership, keeping the legacy role in sync
func (r *MembershipRepository) SetActiveRole(ctx context.Context, membershipID uint, roles RoleSet) (*Membership, error) {
	roles = NewRoleSet(roles...)
	if len(roles) == 0 {
		return nil, ErrEmptyRoleSet
	}

	var membership *Membership
	err := r.transaction(ctx, func(tx *MembershipRepository) error {
		var err error
		if membership, err = tx.FindMembership(ctx, membershipID); err != nil {
			return err
		}
		if membership.Roles.Contains(RoleAdmin) && !roles.Contains(RoleAdmin) {
			if err := tx.ensureAnotherAdmin(ctx, membership); err != nil {
				return err
			}
		}
		membership.Roles = roles
		if err := tx.DB.WithContext(ctx).Save(membership).Error; err != nil {
			log.WithError(err).WithField("membership", membershipID).Error("error updating membership roles")
			return datastoreError(err)
		}
		return nil
	})
	return membership, err
}

// RemoveMembership deletes a membership. Only admin actions may call it.
func (r *MembershipRepository) RemoveMembership(ctx context.Context, membershipID uint) error {
	return r.transaction(ctx, func(tx *MembershipRepository) error {
		membership, err := tx.FindMembership(ctx, membershipID)
		if err != nil {
			return err
		}
		if membership.Roles.Contains(RoleAdmin) {
			if err := tx.ensureAnotherAdmin(ctx, membership); err != nil {
				return err
			}
		}
		if err := tx.DB.WithContext(ctx).Delete(&Membership{}, membershipID).Error; err != nil {
			log.WithError(err).WithField("membership", membershipID).Error("error deleting membership")
			return datastoreError(err)
		}
		return nil
	})
}

// UpdateProfile stores the per-tenant profile of a membership
func (r *MembershipRepository) UpdateProfile(ctx context.Context, membershipID uint, address, skills string) (*Membership, error) {
	membership, err := r.FindMembership(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	membership.SetProfile(address, skills)
	if err := r.DB.WithContext(ctx).Save(membership).Error; err != nil {
		log.WithError(err).WithField("membership", membershipID).Error("error updating membership profile")
		return nil, datastoreError(err)
	}
	return membership, nil
}

// FindMembership returns a membership by id, or ErrMembershipNotFound
func (r *MembershipRepository) FindMembership(ctx context.Context, membershipID uint) (*Membership, error) {
	var membership Membership

	result := r.DB.WithContext(ctx).First(&membership, membershipID)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrMembershipNotFound
	}
	if result.Error != nil {
		log.WithError(result.Error).WithField("membership", membershipID).Error("error finding membership")
		return nil, datastoreError(result.Error)
	}
	return &membership, nil
}

// FindByIdentityAndTenant returns the membership binding both, or nil if there is none
func (r *MembershipRepository) FindByIdentityAndTenant(ctx context.Context, identityID, tenantID uint) (*Membership, error) {
	var membership Membership

	result := r.DB.WithContext(ctx).Where("identity_id = ? AND tenant_id = ?", identityID, tenantID).First(&membership)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		log.WithError(result.Error).Error("error finding membership")
		return nil, datastoreError(result.Error)
	}
	return &membership, nil
}

// FindByTenant lists the memberships of a tenant with their identities, oldest first
func (r *MembershipRepository) FindByTenant(ctx context.Context, tenantID uint, page, pageSize int) ([]Membership, int64, error) {
	var (
		memberships []Membership
		total       int64
	)

	query := func() *gorm.DB {
		return r.DB.WithContext(ctx).Model(&Membership{}).Where("tenant_id = ?", tenantID)
	}
	if err := query().Count(&total).Error; err != nil {
		log.WithError(err).WithField("tenant", tenantID).Error("error counting memberships")
		return nil, 0, datastoreError(err)
	}
	res := query().Preload("Identity").Scopes(Paginate(page, pageSize)).Order("id ASC").Find(&memberships)
	if res.Error != nil {
		log.WithError(res.Error).WithField("tenant", tenantID).Error("error listing memberships")
		return nil, 0, datastoreError(res.Error)
	}
	return memberships, total, nil
}

// Admins returns how many memberships of the tenant hold the admin role
func (r *MembershipRepository) Admins(ctx context.Context, tenantID uint) (int64, error) {
	var total int64

	err := r.DB.WithContext(ctx).Model(&Membership{}).Where("tenant_id = ? AND role = ?", tenantID, RoleAdmin).Count(&total).Error
	if err != nil {
		return 0, datastoreError(err)
	}
	return total, nil
}

func (r *MembershipRepository) ensureAnotherAdmin(ctx context.Context, membership *Membership) error {
	admins, err := r.Admins(ctx, membership.TenantID)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return ErrLastAdmin
	}
	return nil
}

func (r *MembershipRepository) transaction(ctx context.Context, fn func(tx *MembershipRepository) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&MembershipRepository{DB: tx})
	})
}

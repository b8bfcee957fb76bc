package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/gosimple/slug"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TenantRepository is the tenant directory. Tenants are ordered by creation, which is also
// the order used when one has to be picked automatically.
type TenantRepository struct {
	DB *gorm.DB
}

// Create stores a new tenant, deriving its slug from the name if none was given
func (r *TenantRepository) Create(ctx context.Context, tenant *Tenant) error {
	if tenant.Slug == "" {
		tenant.Slug = tenant.Name
	}
	tenant.Slug = slug.Make(tenant.Slug)
	if tenant.Slug == "" {
		return fmt.Errorf("tenant slug cannot be empty")
	}

	if err := r.DB.WithContext(ctx).Create(tenant).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrSlugTaken
		}
		log.WithError(err).WithField("slug", tenant.Slug).Error("error creating tenant")
		return datastoreError(err)
	}
	return nil
}

func (r *TenantRepository) FindBySlug(ctx context.Context, tenantSlug string) (*Tenant, error) {
	return r.find(r.DB.WithContext(ctx).Where("slug = ?", slug.Make(tenantSlug)))
}

// FindActive returns the tenant with the given id only if it exists and is active
func (r *TenantRepository) FindActive(ctx context.Context, id uint) (*Tenant, error) {
	return r.find(r.DB.WithContext(ctx).Where("id = ? AND active = ?", id, true))
}

// FirstActive returns the oldest active tenant, or nil if there are none
func (r *TenantRepository) FirstActive(ctx context.Context) (*Tenant, error) {
	return r.find(r.DB.WithContext(ctx).Where("active = ?", true).Order("id ASC"))
}

func (r *TenantRepository) ListActive(ctx context.Context) ([]Tenant, error) {
	var tenants []Tenant

	if err := r.DB.WithContext(ctx).Where("active = ?", true).Order("id ASC").Find(&tenants).Error; err != nil {
		log.WithError(err).Error("error listing tenants")
		return nil, datastoreError(err)
	}
	return tenants, nil
}

// Deactivate flags a tenant as inactive. Memberships are kept.
func (r *TenantRepository) Deactivate(ctx context.Context, id uint) error {
	result := r.DB.WithContext(ctx).Model(&Tenant{}).Where("id = ?", id).Update("active", false)
	if result.Error != nil {
		log.WithError(result.Error).WithField("tenant", id).Error("error deactivating tenant")
		return datastoreError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUnknownTenant
	}
	return nil
}

func (r *TenantRepository) find(query *gorm.DB) (*Tenant, error) {
	var tenant Tenant

	result := query.First(&tenant)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		log.WithError(result.Error).Error("error finding tenant")
		return nil, datastoreError(result.Error)
	}
	return &tenant, nil
}

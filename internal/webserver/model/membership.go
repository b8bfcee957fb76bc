package model

import (
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

// Membership binds one identity to one tenant with a set of roles
type Membership struct {
	ID         uint `gorm:"primarykey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Uuid       string `gorm:"uniqueIndex"`
	IdentityID uint   `gorm:"not null; uniqueIndex:idx_membership_identity_tenant"`
	TenantID   uint   `gorm:"not null; uniqueIndex:idx_membership_identity_tenant; index"`
	Roles      RoleSet `gorm:"serializer:json; not null"`
	// Role mirrors the highest precedence entry of Roles for legacy readers
	Role     Role `gorm:"not null"`
	JoinedAt time.Time
	Address  string
	Skills   string
	Identity Identity `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Tenant   Tenant   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (m *Membership) BeforeSave(tx *gorm.DB) error {
	m.Roles = NewRoleSet(m.Roles...)
	if len(m.Roles) == 0 {
		return ErrEmptyRoleSet
	}
	m.Role = m.Roles.Primary()
	return nil
}

// RoleView returns the membership roles in both their legacy and multi-role forms
func (m Membership) RoleView() RoleView {
	return NewRoleView(m.Roles...)
}

// SetProfile stores the per-tenant profile fields, stripped of any markup
func (m *Membership) SetProfile(address, skills string) {
	policy := bluemonday.StrictPolicy()
	m.Address = strings.TrimSpace(policy.Sanitize(address))
	m.Skills = strings.TrimSpace(policy.Sanitize(skills))
}

package model

import (
	"strings"
	"time"
)

type InvitationStatus string

const (
	InvitationPending InvitationStatus = "pending"
	InvitationUsed    InvitationStatus = "used"
	// InvitationExpired is only stored once expired codes are reaped. Until then an expired
	// code keeps its pending status and is detected from ExpiresAt.
	InvitationExpired InvitationStatus = "expired"
)

// InvitationCode authorizes the creation of one membership in a tenant
type InvitationCode struct {
	ID                  uint `gorm:"primarykey"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
	TenantID            uint             `gorm:"not null; index"`
	Email               string           `gorm:"not null; index"`
	Code                string           `gorm:"not null; uniqueIndex"`
	Role                Role             `gorm:"not null"`
	Status              InvitationStatus `gorm:"not null; default:pending; index"`
	CreatorMembershipID *uint
	ExpiresAt           *time.Time
	UsedAt              *time.Time
	Tenant              Tenant `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// NormalizeCode trims and upper-cases an invitation code as typed by a user
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Expired reports whether the code can no longer be used because of its age
func (i InvitationCode) Expired(now time.Time) bool {
	if i.Status == InvitationExpired {
		return true
	}
	return i.Status == InvitationPending && i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}

// Check returns why the invitation cannot be redeemed at now, or nil if it can
func (i InvitationCode) Check(now time.Time) error {
	switch {
	case i.Status == InvitationUsed:
		return ErrInvitationUsed
	case i.Expired(now):
		return ErrInvitationExpired
	}
	return nil
}

// MembershipRequest holds what is needed to create the membership an invitation grants
type MembershipRequest struct {
	InvitationID uint
	TenantID     uint
	Email        string
	Roles        RoleSet
}

package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	// ErrAuthentication is returned for bad credentials; it never tells whether the email exists
	ErrAuthentication      = errors.New("wrong email or password")
	ErrDuplicateMembership = errors.New("identity is already a member of this tenant")
	ErrUnknownTenant       = errors.New("tenant does not exist or is inactive")
	ErrMembershipNotFound  = errors.New("membership not found")
	ErrCodeSpaceExhausted  = errors.New("could not generate a unique invitation code")
	ErrInvitationNotFound  = errors.New("invitation not found")
	ErrInvitationExpired   = errors.New("invitation has expired")
	ErrInvitationUsed      = errors.New("invitation has already been used")
	ErrPendingInvitation   = errors.New("a pending invitation already exists for this email")
	ErrUnauthorized        = errors.New("operation requires tenant admin privileges")
	ErrInvalidEmail        = errors.New("incorrect email address")
	ErrInvalidRole         = errors.New("incorrect role")
	ErrEmptyRoleSet        = errors.New("a membership needs at least one role")
	ErrLastAdmin           = errors.New("a tenant cannot be left without admins")
	ErrEmailTaken          = errors.New("an identity with this email already exists")
	ErrSlugTaken           = errors.New("a tenant with this slug already exists")
	ErrDatastore           = errors.New("datastore error")
)

func datastoreError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrDatastore, err)
}

// isUniqueViolation reports whether err comes from a unique constraint, for any of the
// supported drivers
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

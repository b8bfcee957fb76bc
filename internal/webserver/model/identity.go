package model

import (
	"net/mail"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
)

// Identity is a global account, shared by every tenant the person belongs to
type Identity struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Uuid      string `gorm:"uniqueIndex"`
	Email     string `gorm:"not null; uniqueIndex"`
	Name      string
	Avatar    string
	Password  string `json:"-"`
}

// NormalizeEmail trims and case-folds an email address so lookups are case-insensitive
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

// ValidateEmail returns the normalized form of email, or ErrInvalidEmail if it cannot be parsed
// as a bare address
func ValidateEmail(email string) (string, error) {
	normalized := NormalizeEmail(email)
	if len(normalized) > 100 {
		return "", ErrInvalidEmail
	}
	address, err := mail.ParseAddress(normalized)
	if err != nil || address.Address != normalized {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// Validate checks all identity fields to ensure they are in the required format
func (i Identity) Validate(minPasswordLength int) map[string]string {
	errs := map[string]string{}

	if i.Name == "" {
		errs["name"] = "Name cannot be empty"
	}

	if len(i.Name) > 50 {
		errs["name"] = "Name cannot be longer than 50 characters"
	}

	if _, err := ValidateEmail(i.Email); err != nil {
		errs["email"] = "Incorrect email address"
	}

	if len(i.Password) < minPasswordLength {
		errs["password"] = "Password is too short"
	}

	if len(i.Password) > 50 {
		errs["password"] = "Password cannot be longer than 50 characters"
	}

	return errs
}

// Sanitize strips any markup from user provided display fields
func (i *Identity) Sanitize() {
	policy := bluemonday.StrictPolicy()
	i.Name = strings.TrimSpace(policy.Sanitize(i.Name))
	i.Avatar = strings.TrimSpace(policy.Sanitize(i.Avatar))
}

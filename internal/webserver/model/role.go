package model

import (
	"strings"

	"golang.org/x/exp/slices"
	"golang.org/x/text/cases"
)

type Role string

const (
	RoleResident     Role = "Resident"
	RoleEventManager Role = "Event Manager"
	RoleBoardMember  Role = "Board Member"
	RoleAdmin        Role = "Admin"
)

// precedence lists roles from lowest to highest
var precedence = []Role{RoleResident, RoleEventManager, RoleBoardMember, RoleAdmin}

// NormalizeLabel trims and case-folds a role label so it can be compared with other labels
func NormalizeLabel(label string) string {
	return cases.Fold().String(strings.TrimSpace(label))
}

// ParseRole returns the canonical role matching label, ignoring case and surrounding spaces
func ParseRole(label string) (Role, bool) {
	normalized := NormalizeLabel(label)
	for _, role := range precedence {
		if NormalizeLabel(string(role)) == normalized {
			return role, true
		}
	}
	return "", false
}

func (r Role) rank() int {
	return slices.Index(precedence, r)
}

// RoleSet is a deduplicated set of roles, kept ordered from highest to lowest precedence.
type RoleSet []Role

// NewRoleSet builds a role set, ignoring unknown and repeated roles
func NewRoleSet(roles ...Role) RoleSet {
	set := RoleSet{}
	for _, role := range roles {
		if role.rank() < 0 || slices.Contains(set, role) {
			continue
		}
		set = append(set, role)
	}
	slices.SortFunc(set, func(a, b Role) int {
		return b.rank() - a.rank()
	})
	return set
}

// ParseRoleSet converts labels into a role set. It fails with ErrInvalidRole on the first label
// that does not name a known role.
func ParseRoleSet(labels []string) (RoleSet, error) {
	roles := make([]Role, 0, len(labels))
	for _, label := range labels {
		role, ok := ParseRole(label)
		if !ok {
			return nil, ErrInvalidRole
		}
		roles = append(roles, role)
	}
	return NewRoleSet(roles...), nil
}

func (s RoleSet) Contains(role Role) bool {
	return slices.Contains(s, role)
}

// Primary returns the highest precedence role of the set, or an empty role if the set is empty
func (s RoleSet) Primary() Role {
	if len(s) == 0 {
		return ""
	}
	return NewRoleSet(s...)[0]
}

func (s RoleSet) Strings() []string {
	labels := make([]string, len(s))
	for i, role := range s {
		labels[i] = string(role)
	}
	return labels
}

// RoleView exposes a role set through both its singular legacy form and its multi-role form.
// The singular form is always derived from the set, so both can never disagree.
type RoleView struct {
	set RoleSet
}

func NewRoleView(roles ...Role) RoleView {
	return RoleView{set: NewRoleSet(roles...)}
}

func (v RoleView) Set() RoleSet {
	return slices.Clone(v.set)
}

func (v RoleView) Primary() Role {
	return v.set.Primary()
}

// Package authz holds the only definition of what each role is allowed to do. Feature code
// asks HasCapability instead of comparing role labels itself.
package authz

import (
	"github.com/svera/barrio/internal/webserver/model"
)

type Capability string

const (
	// Member is granted to any session bound to a tenant
	Member       Capability = "member"
	Admin        Capability = "admin"
	BoardMember  Capability = "board-member"
	EventManager Capability = "event-manager"
	ManageEvents Capability = "manage-events"
	SuperAdmin   Capability = "super-admin"
)

// legacyOfficerLabels are role names from older installations that still grant event management
var legacyOfficerLabels = []string{
	"HOA Officer",
	"Officer",
	"President",
	"Vice President",
	"Treasurer",
	"Secretary",
}

// HasCapability reports whether session grants capability. Roles are read from both the role
// set and the legacy single role, so either of them being stale does not lose permissions.
func HasCapability(session model.Session, capability Capability) bool {
	switch capability {
	case SuperAdmin:
		return session.IsSuperAdmin
	case Admin:
		return session.IsSuperAdmin || hasRole(session, string(model.RoleAdmin))
	case BoardMember:
		return hasRole(session, string(model.RoleBoardMember))
	case EventManager:
		return hasRole(session, string(model.RoleEventManager))
	case ManageEvents:
		if session.IsSuperAdmin {
			return true
		}
		labels := append([]string{
			string(model.RoleAdmin),
			string(model.RoleEventManager),
			string(model.RoleBoardMember),
		}, legacyOfficerLabels...)
		return hasRole(session, labels...)
	case Member:
		return session.HasTenant() && (len(session.Roles) > 0 || session.Role != "")
	}
	return false
}

// WithFlags returns session with its capability flags derived from its roles
func WithFlags(session model.Session) model.Session {
	session.IsAdmin = HasCapability(session, Admin)
	session.IsBoardMember = HasCapability(session, BoardMember)
	session.IsEventManager = HasCapability(session, EventManager)
	return session
}

// MembershipSession builds the session a membership would grant, used to check what the
// member may do right now regardless of any previously issued token
func MembershipSession(membership model.Membership) model.Session {
	view := membership.RoleView()
	return WithFlags(model.Session{
		IdentityID: membership.IdentityID,
		TenantID:   membership.TenantID,
		Roles:      view.Set().Strings(),
		Role:       string(view.Primary()),
	})
}

func hasRole(session model.Session, labels ...string) bool {
	held := make(map[string]struct{}, len(session.Roles)+1)
	for _, role := range session.Roles {
		held[model.NormalizeLabel(role)] = struct{}{}
	}
	if session.Role != "" {
		held[model.NormalizeLabel(session.Role)] = struct{}{}
	}

	for _, label := range labels {
		if _, ok := held[model.NormalizeLabel(label)]; ok {
			return true
		}
	}
	return false
}

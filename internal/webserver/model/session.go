package model

// Session is the identity and tenant context a request runs under. It is rebuilt from the
// ledger every time a session token is issued or refreshed.
type Session struct {
	IdentityID     uint
	IdentityUuid   string
	Email          string
	Name           string
	TenantID       uint
	Roles          []string
	Role           string
	IsAdmin        bool
	IsBoardMember  bool
	IsEventManager bool
	IsSuperAdmin   bool
	Exp            float64
}

// HasTenant reports whether the session is bound to a tenant
func (s Session) HasTenant() bool {
	return s.TenantID != 0
}

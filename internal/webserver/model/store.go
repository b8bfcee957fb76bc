package model

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories over a single connection, so they can share a transaction
type Store struct {
	DB *gorm.DB
}

func (s *Store) Identities() *IdentityRepository {
	return &IdentityRepository{DB: s.DB}
}

func (s *Store) Tenants() *TenantRepository {
	return &TenantRepository{DB: s.DB}
}

func (s *Store) Memberships() *MembershipRepository {
	return &MembershipRepository{DB: s.DB}
}

func (s *Store) Invitations() *InvitationRepository {
	return &InvitationRepository{DB: s.DB}
}

// Transaction runs fn with a store bound to a database transaction, committing it only if
// fn returns nil
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{DB: tx})
	})
}

// Join makes the identity owning email a member of tenantID with roles. The identity is created
// with name and password if it does not exist yet; otherwise password must match its credentials.
// Callers wanting all or nothing run it inside Transaction.
func (s *Store) Join(ctx context.Context, email, name, password string, tenantID uint, roles RoleSet) (*Identity, *Membership, error) {
	identity, err := s.Identities().FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}

	if identity == nil {
		identity = &Identity{Email: email, Name: name, Password: password}
		if err = s.Identities().Register(ctx, identity); err != nil {
			return nil, nil, err
		}
	} else if identity, err = s.Identities().Authenticate(ctx, email, password); err != nil {
		return nil, nil, err
	}

	membership, err := s.Memberships().CreateMembership(ctx, identity.ID, tenantID, roles)
	if err != nil {
		return nil, nil, err
	}
	return identity, membership, nil
}

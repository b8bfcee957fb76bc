package invitation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/svera/barrio/internal/invitation"
	"github.com/svera/barrio/internal/webserver/infrastructure"
	"github.com/svera/barrio/internal/webserver/model"
)

type notifierMock struct {
	mu    sync.Mutex
	fail  bool
	calls []model.InvitationCode
}

func (n *notifierMock) InvitationIssued(inv model.InvitationCode, tenant model.Tenant, lang string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, inv)
	if n.fail {
		return errors.New("smtp server unavailable")
	}
	return nil
}

type fixture struct {
	store    *model.Store
	tenant   *model.Tenant
	admin    *model.Membership
	resident *model.Membership
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	f := &fixture{
		store: &model.Store{DB: infrastructure.Connect(":memory:")},
		now:   time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC),
	}

	f.tenant = &model.Tenant{Name: "Los Olivos"}
	if err := f.store.Tenants().Create(ctx, f.tenant); err != nil {
		t.Fatalf("Unexpected error creating tenant: %v", err)
	}
	f.admin = f.member(t, "admin@example.com", f.tenant.ID, model.RoleAdmin)
	f.resident = f.member(t, "resident@example.com", f.tenant.ID, model.RoleResident)
	return f
}

func (f *fixture) member(t *testing.T, email string, tenantID uint, role model.Role) *model.Membership {
	t.Helper()

	ctx := context.Background()
	identity, err := f.store.Identities().FindByEmail(ctx, email)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if identity == nil {
		identity = &model.Identity{Name: "Test", Email: email, Password: "secret"}
		if err := f.store.Identities().Register(ctx, identity); err != nil {
			t.Fatalf("Unexpected error registering identity: %v", err)
		}
	}
	membership, err := f.store.Memberships().CreateMembership(ctx, identity.ID, tenantID, model.NewRoleSet(role))
	if err != nil {
		t.Fatalf("Unexpected error creating membership: %v", err)
	}
	return membership
}

func (f *fixture) registry(notifier invitation.Notifier, generator invitation.Generator) *invitation.Registry {
	return invitation.NewRegistry(f.store, notifier, invitation.Config{
		Timeout:   7 * 24 * time.Hour,
		Lang:      "en",
		Generator: generator,
		Clock:     func() time.Time { return f.now },
	})
}

func fixedCode(code string) invitation.Generator {
	return func() (string, error) {
		return code, nil
	}
}

func TestInvitationLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	notifier := &notifierMock{}
	registry := f.registry(notifier, fixedCode("A1B2C3"))

	issued, err := registry.Issue(ctx, f.tenant.ID, "A@X.com", model.RoleResident, invitation.Issuer{MembershipID: f.admin.ID})
	if err != nil {
		t.Fatalf("Unexpected error issuing invitation: %v", err)
	}
	if issued.Code != "A1B2C3" || issued.Status != model.InvitationPending {
		t.Errorf("Wrong invitation issued: %+v", issued)
	}
	if issued.CreatorMembershipID == nil || *issued.CreatorMembershipID != f.admin.ID {
		t.Errorf("Expected creator to be the admin membership")
	}
	if issued.ExpiresAt == nil || !issued.ExpiresAt.Equal(f.now.Add(7*24*time.Hour)) {
		t.Errorf("Expected invitation to expire in 7 days, got %v", issued.ExpiresAt)
	}
	if len(notifier.calls) != 1 {
		t.Errorf("Expected invitation to be notified once, got %d", len(notifier.calls))
	}

	validated, err := registry.Validate(ctx, "a1b2c3")
	if err != nil {
		t.Fatalf("Unexpected error validating invitation: %v", err)
	}
	if validated.TenantID != f.tenant.ID || validated.Email != "a@x.com" || validated.Role != model.RoleResident {
		t.Errorf("Wrong invitation returned on validation: %+v", validated)
	}

	identity, membership, err := registry.Enrol(ctx, "A1B2C3", invitation.Registration{Name: "Ana", Password: "secret"})
	if err != nil {
		t.Fatalf("Unexpected error redeeming invitation: %v", err)
	}
	if identity.Email != "a@x.com" {
		t.Errorf("Expected identity for a@x.com, got %s", identity.Email)
	}
	if membership.TenantID != f.tenant.ID || len(membership.Roles) != 1 || membership.Role != model.RoleResident {
		t.Errorf("Wrong membership created: %+v", membership)
	}

	if _, err := registry.Redeem(ctx, "A1B2C3"); !errors.Is(err, model.ErrInvitationUsed) {
		t.Errorf("Expected second redemption to fail with %v, got %v", model.ErrInvitationUsed, err)
	}
	if _, err := registry.Validate(ctx, "a1b2c3"); !errors.Is(err, model.ErrInvitationUsed) {
		t.Errorf("Expected validation of used code to fail with %v, got %v", model.ErrInvitationUsed, err)
	}
}

func TestValidateUnknownCode(t *testing.T) {
	f := newFixture(t)
	registry := f.registry(nil, nil)

	if _, err := registry.Validate(context.Background(), "ZZZZZZ"); !errors.Is(err, model.ErrInvitationNotFound) {
		t.Errorf("Expected %v, got %v", model.ErrInvitationNotFound, err)
	}
	if _, err := registry.Redeem(context.Background(), "ZZZZZZ"); !errors.Is(err, model.ErrInvitationNotFound) {
		t.Errorf("Expected %v, got %v", model.ErrInvitationNotFound, err)
	}
}

func TestMalformedCodesSkipDatastore(t *testing.T) {
	f := newFixture(t)
	registry := f.registry(nil, nil)

	sqlDB, err := f.store.DB.DB()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, code := range []string{"", "A1B2", "A1B2C3D", "A1-B2C", "ÑAB123"} {
		if _, err := registry.Validate(context.Background(), code); !errors.Is(err, model.ErrInvitationNotFound) {
			t.Errorf("Validate(%q): expected %v, got %v", code, model.ErrInvitationNotFound, err)
		}
	}

	// Well formed codes still reach the datastore
	if _, err := registry.Validate(context.Background(), "ZZZZZZ"); !errors.Is(err, model.ErrDatastore) {
		t.Errorf("Expected %v, got %v", model.ErrDatastore, err)
	}
}

func TestExpiredInvitation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	registry := f.registry(nil, fixedCode("EXP123"))

	if _, err := registry.Issue(ctx, f.tenant.ID, "late@example.com", model.RoleResident, invitation.Issuer{MembershipID: f.admin.ID}); err != nil {
		t.Fatalf("Unexpected error issuing invitation: %v", err)
	}

	f.now = f.now.Add(8 * 24 * time.Hour)

	if _, err := registry.Validate(ctx, "exp123"); !errors.Is(err, model.ErrInvitationExpired) {
		t.Errorf("Expected %v, got %v", model.ErrInvitationExpired, err)
	}
	if _, err := registry.Redeem(ctx, "EXP123"); !errors.Is(err, model.ErrInvitationExpired) {
		t.Errorf("Expected %v, got %v", model.ErrInvitationExpired, err)
	}

	stored, err := f.store.Invitations().FindByCode(ctx, "EXP123")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if stored.Status != model.InvitationPending {
		t.Errorf("Expected stored status to remain pending, got %s", stored.Status)
	}

	t.Run("Reaping stores the expired status", func(t *testing.T) {
		reaped, err := registry.Reap(ctx, f.tenant.ID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if reaped != 1 {
			t.Errorf("Expected 1 invitation reaped, got %d", reaped)
		}
		stored, _ := f.store.Invitations().FindByCode(ctx, "EXP123")
		if stored.Status != model.InvitationExpired {
			t.Errorf("Expected stored status to be expired, got %s", stored.Status)
		}
		if _, err := registry.Validate(ctx, "EXP123"); !errors.Is(err, model.ErrInvitationExpired) {
			t.Errorf("Expected %v, got %v", model.ErrInvitationExpired, err)
		}
	})
}

func TestConcurrentRedemption(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	registry := f.registry(nil, fixedCode("RACE01"))

	if _, err := registry.Issue(ctx, f.tenant.ID, "race@example.com", model.RoleResident, invitation.Issuer{MembershipID: f.admin.ID}); err != nil {
		t.Fatalf("Unexpected error issuing invitation: %v", err)
	}

	const attempts = 8
	var (
		wg   sync.WaitGroup
		errs = make([]error, attempts)
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = registry.Redeem(ctx, "race01")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !errors.Is(err, model.ErrInvitationUsed):
			t.Errorf("Expected %v, got %v", model.ErrInvitationUsed, err)
		}
	}
	if succeeded != 1 {
		t.Errorf("Expected exactly one successful redemption, got %d", succeeded)
	}
}

func TestIssueAuthorization(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	other := &model.Tenant{Name: "Las Encinas"}
	if err := f.store.Tenants().Create(ctx, other); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	otherAdmin := f.member(t, "other-admin@example.com", other.ID, model.RoleAdmin)

	var cases = []struct {
		name     string
		tenantID uint
		issuer   invitation.Issuer
		expected error
	}{
		{"Residents cannot invite", f.tenant.ID, invitation.Issuer{MembershipID: f.resident.ID}, model.ErrUnauthorized},
		{"Admins of another tenant cannot invite", f.tenant.ID, invitation.Issuer{MembershipID: otherAdmin.ID}, model.ErrUnauthorized},
		{"Unknown memberships cannot invite", f.tenant.ID, invitation.Issuer{MembershipID: 999}, model.ErrUnauthorized},
		{"Nobody can invite into an unknown tenant", 999, invitation.Issuer{SuperAdmin: true}, model.ErrUnknownTenant},
		{"Super admins can invite into any tenant", other.ID, invitation.Issuer{SuperAdmin: true}, nil},
		{"Admins can invite into their tenant", f.tenant.ID, invitation.Issuer{MembershipID: f.admin.ID}, nil},
	}

	for i, tcase := range cases {
		t.Run(tcase.name, func(t *testing.T) {
			registry := f.registry(nil, invitation.RandomCode)
			email := "invitee" + string(rune('a'+i)) + "@example.com"
			inv, err := registry.Issue(ctx, tcase.tenantID, email, model.RoleResident, tcase.issuer)
			if !errors.Is(err, tcase.expected) {
				t.Fatalf("Expected %v, got %v", tcase.expected, err)
			}
			if err == nil && tcase.issuer.SuperAdmin && inv.CreatorMembershipID != nil {
				t.Errorf("Expected no creator membership for super admin invitations")
			}
		})
	}

	t.Run("Inactive tenants do not accept invitations", func(t *testing.T) {
		if err := f.store.Tenants().Deactivate(ctx, other.ID); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		registry := f.registry(nil, invitation.RandomCode)
		if _, err := registry.Issue(ctx, other.ID, "late@example.com", model.RoleResident, invitation.Issuer{MembershipID: otherAdmin.ID}); !errors.Is(err, model.ErrUnknownTenant) {
			t.Errorf("Expected %v, got %v", model.ErrUnknownTenant, err)
		}
	})
}

func TestIssueValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	registry := f.registry(nil, invitation.RandomCode)
	admin := invitation.Issuer{MembershipID: f.admin.ID}

	var cases = []struct {
		name     string
		email    string
		role     model.Role
		expected error
	}{
		{"Invalid email", "not-an-email", model.RoleResident, model.ErrInvalidEmail},
		{"Unknown role", "new@example.com", model.Role("Mayor"), model.ErrInvalidRole},
		{"Already a member", "RESIDENT@example.com", model.RoleResident, model.ErrDuplicateMembership},
		{"Role names are case-insensitive", "board@example.com", model.Role("board member"), nil},
	}

	for _, tcase := range cases {
		t.Run(tcase.name, func(t *testing.T) {
			inv, err := registry.Issue(ctx, f.tenant.ID, tcase.email, tcase.role, admin)
			if !errors.Is(err, tcase.expected) {
				t.Fatalf("Expected %v, got %v", tcase.expected, err)
			}
			if err == nil && inv.Role != model.RoleBoardMember {
				t.Errorf("Expected canonical role %s, got %s", model.RoleBoardMember, inv.Role)
			}
		})
	}
}

func TestCodeCollisions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	draws := 0
	registry := f.registry(nil, func() (string, error) {
		draws++
		return "SAME00", nil
	})
	admin := invitation.Issuer{MembershipID: f.admin.ID}

	if _, err := registry.Issue(ctx, f.tenant.ID, "first@example.com", model.RoleResident, admin); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	draws = 0
	if _, err := registry.Issue(ctx, f.tenant.ID, "second@example.com", model.RoleResident, admin); !errors.Is(err, model.ErrCodeSpaceExhausted) {
		t.Errorf("Expected %v, got %v", model.ErrCodeSpaceExhausted, err)
	}
	if draws != 5 {
		t.Errorf("Expected 5 codes to be drawn, got %d", draws)
	}

	t.Run("A collision is retried with a new code", func(t *testing.T) {
		codes := []string{"SAME00", "FRESH1"}
		registry := f.registry(nil, func() (string, error) {
			code := codes[0]
			codes = codes[1:]
			return code, nil
		})
		inv, err := registry.Issue(ctx, f.tenant.ID, "third@example.com", model.RoleResident, admin)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if inv.Code != "FRESH1" {
			t.Errorf("Expected code FRESH1, got %s", inv.Code)
		}
	})
}

func TestIssueBulk(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	notifier := &notifierMock{}
	registry := f.registry(notifier, invitation.RandomCode)

	entries := []invitation.Entry{
		{Email: "one@example.com", Role: model.RoleResident},
		{Email: "broken", Role: model.RoleResident},
		{Email: "two@example.com", Role: model.RoleEventManager},
		{Email: "ONE@example.com", Role: model.RoleAdmin},
	}

	results, err := registry.IssueBulk(ctx, f.tenant.ID, entries, invitation.Issuer{MembershipID: f.admin.ID})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := []error{nil, model.ErrInvalidEmail, nil, model.ErrPendingInvitation}
	for i, result := range results {
		if !errors.Is(result.Err, expected[i]) {
			t.Errorf("Entry %d: expected %v, got %v", i, expected[i], result.Err)
		}
		if result.Err == nil && result.Invitation == nil {
			t.Errorf("Entry %d: expected an invitation", i)
		}
	}

	invitations, err := registry.List(ctx, f.tenant.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(invitations) != 2 {
		t.Errorf("Expected 2 invitations stored, got %d", len(invitations))
	}
	if len(notifier.calls) != 2 {
		t.Errorf("Expected 2 notifications, got %d", len(notifier.calls))
	}

	t.Run("Bulk issuing checks the issuer", func(t *testing.T) {
		if _, err := registry.IssueBulk(ctx, f.tenant.ID, entries, invitation.Issuer{MembershipID: f.resident.ID}); !errors.Is(err, model.ErrUnauthorized) {
			t.Errorf("Expected %v, got %v", model.ErrUnauthorized, err)
		}
	})
}

func TestNotificationFailureDoesNotFailIssuance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	notifier := &notifierMock{fail: true}
	registry := f.registry(notifier, invitation.RandomCode)

	inv, err := registry.Issue(ctx, f.tenant.ID, "unlucky@example.com", model.RoleResident, invitation.Issuer{MembershipID: f.admin.ID})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := registry.Validate(ctx, inv.Code); err != nil {
		t.Errorf("Expected invitation to be valid, got %v", err)
	}
}

func TestEnrolExistingIdentity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	other := &model.Tenant{Name: "Las Encinas"}
	if err := f.store.Tenants().Create(ctx, other); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	otherAdmin := f.member(t, "other-admin@example.com", other.ID, model.RoleAdmin)
	registry := f.registry(nil, fixedCode("JOIN01"))

	if _, err := registry.Issue(ctx, other.ID, "resident@example.com", model.RoleBoardMember, invitation.Issuer{MembershipID: otherAdmin.ID}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	t.Run("Wrong password keeps the code pending", func(t *testing.T) {
		if _, _, err := registry.Enrol(ctx, "JOIN01", invitation.Registration{Password: "wrong"}); !errors.Is(err, model.ErrAuthentication) {
			t.Fatalf("Expected %v, got %v", model.ErrAuthentication, err)
		}
		if _, err := registry.Validate(ctx, "JOIN01"); err != nil {
			t.Errorf("Expected invitation to remain valid, got %v", err)
		}
	})

	t.Run("Right password adds a second membership", func(t *testing.T) {
		identity, membership, err := registry.Enrol(ctx, "JOIN01", invitation.Registration{Password: "secret"})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		memberships, err := f.store.Memberships().FindMemberships(ctx, identity.ID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(memberships) != 2 {
			t.Errorf("Expected 2 memberships, got %d", len(memberships))
		}
		if membership.Role != model.RoleBoardMember {
			t.Errorf("Expected role %s, got %s", model.RoleBoardMember, membership.Role)
		}
	})
}

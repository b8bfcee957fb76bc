package webserver_test

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/svera/barrio/internal/session"
	"github.com/svera/barrio/internal/webserver/infrastructure"
	"github.com/svera/barrio/internal/webserver/model"
)

func TestAuthentication(t *testing.T) {
	db := infrastructure.Connect(":memory:")
	app := bootstrapApp(t, db, &infrastructure.NoEmail{}, nil)

	var cases = []struct {
		name     string
		email    string
		password string
		lang     string
		expected string
	}{
		{"Wrong password", "admin@example.com", "wrong", "en", "Wrong email or password"},
		{"Unknown email gets the same answer", "nobody@example.com", "admin", "en", "Wrong email or password"},
		{"Messages are translated", "nobody@example.com", "admin", "es", "Email o contraseña incorrectos"},
	}

	for _, tcase := range cases {
		t.Run(tcase.name, func(t *testing.T) {
			data := url.Values{"email": {tcase.email}, "password": {tcase.password}}
			req, err := http.NewRequest(http.MethodPost, "/sessions", strings.NewReader(data.Encode()))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err.Error())
			}
			req.Header.Add("Content-Type", "application/x-www-form-urlencoded")
			req.Header.Add("Accept-Language", tcase.lang)

			response, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err.Error())
			}
			mustReturnStatus(response, http.StatusUnauthorized, t)
			if message := errorMessage(response, t); message != tcase.expected {
				t.Errorf("Expected error message '%s', got '%s'", tcase.expected, message)
			}
		})
	}

	t.Run("Sign in, refresh and sign out", func(t *testing.T) {
		response, err := request(app, http.MethodPost, "/sessions", url.Values{
			"email":    {"ADMIN@example.com"},
			"password": {"admin"},
		}, nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err.Error())
		}
		mustReturnStatus(response, http.StatusOK, t)
		cookie := sessionCookie(response)
		if cookie == nil {
			t.Fatal("Cookie not set up")
		}

		signedIn := decode[model.Session](response, t)
		if !signedIn.IsAdmin || signedIn.TenantID == 0 || signedIn.Role != string(model.RoleAdmin) {
			t.Errorf("Expected an admin session bound to a tenant, got %+v", signedIn)
		}

		response, err = request(app, http.MethodGet, "/sessions", nil, cookie)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err.Error())
		}
		mustReturnStatus(response, http.StatusOK, t)
		if current := decode[model.Session](response, t); current.Email != "admin@example.com" || current.TenantID != signedIn.TenantID {
			t.Errorf("Wrong current session: %+v", current)
		}

		response, err = request(app, http.MethodPost, "/sessions", url.Values{
			"email":    {"admin@example.com"},
			"password": {"admin"},
		}, cookie)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err.Error())
		}
		mustReturnStatus(response, http.StatusForbidden, t)

		response, err = request(app, http.MethodPost, "/sessions/refresh", nil, cookie)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err.Error())
		}
		mustReturnStatus(response, http.StatusOK, t)
		if sessionCookie(response) == nil {
			t.Error("Expected a new session cookie after refreshing")
		}

		response, err = request(app, http.MethodDelete, "/sessions", nil, cookie)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err.Error())
		}
		mustReturnStatus(response, http.StatusNoContent, t)
		if cleared := sessionCookie(response); cleared == nil || cleared.Value != "" {
			t.Error("Expected session cookie to be cleared")
		}
	})

	t.Run("Session endpoints require a valid token", func(t *testing.T) {
		response, err := request(app, http.MethodGet, "/sessions", nil, nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err.Error())
		}
		mustReturnStatus(response, http.StatusUnauthorized, t)

		forged := &http.Cookie{Name: "barrio", Value: "not-a-token"}
		response, err = request(app, http.MethodPost, "/sessions/refresh", nil, forged)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err.Error())
		}
		mustReturnStatus(response, http.StatusUnauthorized, t)
	})
}

func TestRefreshFailsWhenDatastoreIsDown(t *testing.T) {
	db := infrastructure.Connect(":memory:")
	app := bootstrapApp(t, db, &infrastructure.NoEmail{}, nil)
	cookie := login(app, "admin@example.com", "admin", t)

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	response, err := request(app, http.MethodPost, "/sessions/refresh", nil, cookie)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err.Error())
	}
	mustReturnStatus(response, http.StatusInternalServerError, t)
	if refreshed := sessionCookie(response); refreshed != nil {
		t.Errorf("Expected no session cookie, got %+v", refreshed)
	}
	if message := errorMessage(response, t); message != "Something went wrong, please try again later" {
		t.Errorf("Expected generic error message, got '%s'", message)
	}
}

func TestSuperAdminSession(t *testing.T) {
	db := infrastructure.Connect(":memory:")
	app := bootstrapApp(t, db, &infrastructure.NoEmail{}, session.NewAllowList("root@example.com"))

	root := &model.Identity{Name: "Root", Email: "root@example.com", Password: "rootpass"}
	if err := (&model.Store{DB: db}).Identities().Register(context.Background(), root); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	response, err := request(app, http.MethodPost, "/sessions", url.Values{
		"email":    {"root@example.com"},
		"password": {"rootpass"},
	}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err.Error())
	}
	mustReturnStatus(response, http.StatusOK, t)
	cookie := sessionCookie(response)

	rootSession := decode[model.Session](response, t)
	if !rootSession.IsSuperAdmin || !rootSession.IsAdmin || rootSession.TenantID != 0 {
		t.Errorf("Expected a super admin session without tenant, got %+v", rootSession)
	}

	memberships, err := (&model.Store{DB: db}).Memberships().FindMemberships(context.Background(), root.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(memberships) != 0 {
		t.Errorf("Expected super admins not to be joined to any tenant, got %d memberships", len(memberships))
	}

	t.Run("Super admins create tenants and invite people into them", func(t *testing.T) {
		response, err := request(app, http.MethodPost, "/tenants", url.Values{"name": {"Las Encinas"}}, cookie)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err.Error())
		}
		mustReturnStatus(response, http.StatusCreated, t)
		tenant := decode[model.Tenant](response, t)
		if tenant.Slug != "las-encinas" || !tenant.Active {
			t.Errorf("Wrong tenant created: %+v", tenant)
		}

		response, err = request(app, http.MethodPost, "/invitations?tenant_id="+uintString(tenant.ID), url.Values{
			"email": {"neighbour@example.com"},
			"role":  {"Admin"},
		}, cookie)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err.Error())
		}
		mustReturnStatus(response, http.StatusCreated, t)
		issued := decode[model.InvitationCode](response, t)
		if issued.TenantID != tenant.ID || issued.CreatorMembershipID != nil {
			t.Errorf("Wrong invitation issued: %+v", issued)
		}
	})

	t.Run("Regular admins cannot create tenants", func(t *testing.T) {
		adminCookie := login(app, "admin@example.com", "admin", t)
		response, err := request(app, http.MethodPost, "/tenants", url.Values{"name": {"Los Pinos"}}, adminCookie)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err.Error())
		}
		mustReturnStatus(response, http.StatusForbidden, t)
	})
}

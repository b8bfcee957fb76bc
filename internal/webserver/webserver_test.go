package webserver_test

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/svera/barrio/internal/i18n"
	"github.com/svera/barrio/internal/session"
	"github.com/svera/barrio/internal/webserver"
	"github.com/svera/barrio/internal/webserver/controller/auth"
	"github.com/svera/barrio/internal/webserver/infrastructure"
	"github.com/svera/barrio/internal/webserver/model"
	"gorm.io/gorm"
)

func TestUnknownRoute(t *testing.T) {
	db := infrastructure.Connect(":memory:")
	app := bootstrapApp(t, db, &infrastructure.NoEmail{}, nil)

	response, err := request(app, http.MethodGet, "/nowhere", nil, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err.Error())
	}
	mustReturnStatus(response, http.StatusNotFound, t)
}

func bootstrapApp(t *testing.T, db *gorm.DB, sender infrastructure.Sender, policy session.Policy) *fiber.App {
	t.Helper()

	infrastructure.AddDefaultTenant(db)

	translations, err := fs.Sub(webserver.Embedded, "embedded/translations")
	if err != nil {
		t.Fatal(err)
	}
	translator, err := i18n.NewTranslator(translations, "en")
	if err != nil {
		t.Fatal(err)
	}

	webserverConfig := webserver.Config{
		JwtSecret:         []byte("secret"),
		SessionTimeout:    24 * time.Hour,
		InvitationTimeout: 72 * time.Hour,
		MinPasswordLength: 5,
		FQDN:              "localhost:3000",
		Lang:              "en",
	}

	controllers := webserver.SetupControllers(webserverConfig, db, sender, translator, policy)
	return webserver.New(webserverConfig, controllers, translator)
}

// request sends data as a form, or as JSON if it is not url.Values
func request(app *fiber.App, method, target string, data any, cookie *http.Cookie) (*http.Response, error) {
	var (
		body        io.Reader
		contentType string
	)
	switch value := data.(type) {
	case nil:
	case url.Values:
		body = strings.NewReader(value.Encode())
		contentType = fiber.MIMEApplicationForm
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		body = strings.NewReader(string(encoded))
		contentType = fiber.MIMEApplicationJSON
	}

	req, err := http.NewRequest(method, target, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Add("Content-Type", contentType)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	return app.Test(req, -1)
}

func login(app *fiber.App, email, password string, t *testing.T) *http.Cookie {
	t.Helper()

	response, err := request(app, http.MethodPost, "/sessions", url.Values{
		"email":    {email},
		"password": {password},
	}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err.Error())
	}
	mustReturnStatus(response, http.StatusOK, t)

	cookie := sessionCookie(response)
	if cookie == nil {
		t.Fatalf("Cookie not set up")
	}
	return cookie
}

func sessionCookie(response *http.Response) *http.Cookie {
	for _, cookie := range response.Cookies() {
		if cookie.Name == auth.CookieName {
			return cookie
		}
	}
	return nil
}

func decode[T any](response *http.Response, t *testing.T) T {
	t.Helper()

	var value T
	if err := json.NewDecoder(response.Body).Decode(&value); err != nil {
		t.Fatalf("Could not decode response: %v", err)
	}
	return value
}

func errorMessage(response *http.Response, t *testing.T) string {
	t.Helper()
	return decode[map[string]string](response, t)["error"]
}

func mustReturnStatus(response *http.Response, expectedStatus int, t *testing.T) {
	t.Helper()

	if response.StatusCode != expectedStatus {
		t.Errorf("Expected status %d, received %d", expectedStatus, response.StatusCode)
	}
}

// register makes a new identity join tenantSlug through self-service registration
func register(app *fiber.App, tenantSlug, name, email, password string, t *testing.T) (*http.Cookie, model.Session) {
	t.Helper()

	response, err := request(app, http.MethodPost, fmt.Sprintf("/tenants/%s/register", tenantSlug), url.Values{
		"name":     {name},
		"email":    {email},
		"password": {password},
	}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err.Error())
	}
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("Expected status %d, received %d", http.StatusCreated, response.StatusCode)
	}
	return sessionCookie(response), decode[model.Session](response, t)
}

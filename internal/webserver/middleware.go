package webserver

import (
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/svera/barrio/internal/authz"
	"github.com/svera/barrio/internal/i18n"
	"github.com/svera/barrio/internal/webserver/controller/auth"
	"github.com/svera/barrio/internal/webserver/model"
)

// SetLang stores the best language for the request among the supported ones as a local variable
func SetLang(translator *i18n.Translator) func(*fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		c.Locals("Lang", translator.Match(c.Get(fiber.HeaderAcceptLanguage)))
		return c.Next()
	}
}

// AllowIfNotLoggedIn only allows processing the request if there is no valid session
func AllowIfNotLoggedIn(jwtSecret []byte) func(*fiber.Ctx) error {
	return jwtware.New(jwtware.Config{
		SigningKey:    jwtSecret,
		SigningMethod: "HS256",
		TokenLookup:   "cookie:" + auth.CookieName,
		SuccessHandler: func(c *fiber.Ctx) error {
			return fiber.ErrForbidden
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Next()
		},
	})
}

// RequireAuthentication returns unauthorized if the request carries no valid session token.
// Otherwise the session is made available to the following handlers as the "Session" local.
func RequireAuthentication(jwtSecret []byte) func(*fiber.Ctx) error {
	return jwtware.New(jwtware.Config{
		SigningKey:    jwtSecret,
		SigningMethod: "HS256",
		TokenLookup:   "cookie:" + auth.CookieName,
		SuccessHandler: func(c *fiber.Ctx) error {
			c.Locals("Session", sessionData(c))
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return fiber.ErrUnauthorized
		},
	})
}

// RequireCapability returns forbidden if the session does not grant capability. It must run
// after RequireAuthentication.
func RequireCapability(capability authz.Capability) func(*fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		session, ok := c.Locals("Session").(model.Session)
		if !ok {
			return fiber.ErrUnauthorized
		}
		if !authz.HasCapability(session, capability) {
			return model.ErrUnauthorized
		}
		return c.Next()
	}
}

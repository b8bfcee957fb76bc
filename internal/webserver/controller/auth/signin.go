package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	log "github.com/sirupsen/logrus"
	"github.com/svera/barrio/internal/webserver/model"
)

type credentials struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	// TenantID is the tenant to start in, if the identity belongs to it
	TenantID uint `json:"tenant_id" form:"tenant_id"`
}

// SignIn verifies the credentials and gives a session token to their identity
func (a *Controller) SignIn(c *fiber.Ctx) error {
	var form credentials
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}

	identity, err := a.identities.Authenticate(c.UserContext(), form.Email, form.Password)
	if err != nil {
		return err
	}

	session, err := a.resolver.Resolve(c.UserContext(), identity.Email, form.TenantID)
	if err != nil {
		return err
	}

	log.WithField("identity", session.IdentityUuid).WithField("tenant", session.TenantID).Info("signed in")
	return a.StartSession(c, session)
}

// StartSession sets the token for session as a cookie and answers with the session itself
func (a *Controller) StartSession(c *fiber.Ctx, session model.Session) error {
	expiration := time.Now().Add(a.config.SessionTimeout)
	session.Exp = float64(expiration.Unix())

	signedToken, err := GenerateToken(session, expiration, a.config.Secret)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    signedToken,
		Path:     "/",
		Expires:  expiration,
		Secure:   false,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(session)
}

func GenerateToken(session model.Session, expiration time.Time, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"session": session,
		"exp":     jwt.NewNumericDate(expiration),
	})

	return token.SignedString(secret)
}

package auth

import (
	"github.com/gofiber/fiber/v2"
)

// SignOut removes the session token
func (a *Controller) SignOut(c *fiber.Ctx) error {
	clearCookie(c)
	return c.SendStatus(fiber.StatusNoContent)
}

func clearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   false,
		HTTPOnly: true,
	})
}

package webserver

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/svera/barrio/internal/webserver/model"
)

func sessionData(c *fiber.Ctx) model.Session {
	var session model.Session

	t, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return session
	}
	claims := t.Claims.(jwt.MapClaims)
	sessionMap, ok := claims["session"].(map[string]any)
	if !ok {
		return session
	}

	if value, ok := sessionMap["IdentityID"].(float64); ok {
		session.IdentityID = uint(value)
	}
	if value, ok := sessionMap["IdentityUuid"].(string); ok {
		session.IdentityUuid = value
	}
	if value, ok := sessionMap["Email"].(string); ok {
		session.Email = value
	}
	if value, ok := sessionMap["Name"].(string); ok {
		session.Name = value
	}
	if value, ok := sessionMap["TenantID"].(float64); ok {
		session.TenantID = uint(value)
	}
	if values, ok := sessionMap["Roles"].([]any); ok {
		for _, value := range values {
			if role, ok := value.(string); ok {
				session.Roles = append(session.Roles, role)
			}
		}
	}
	if value, ok := sessionMap["Role"].(string); ok {
		session.Role = value
	}
	if value, ok := sessionMap["IsAdmin"].(bool); ok {
		session.IsAdmin = value
	}
	if value, ok := sessionMap["IsBoardMember"].(bool); ok {
		session.IsBoardMember = value
	}
	if value, ok := sessionMap["IsEventManager"].(bool); ok {
		session.IsEventManager = value
	}
	if value, ok := sessionMap["IsSuperAdmin"].(bool); ok {
		session.IsSuperAdmin = value
	}
	if value, ok := claims["exp"].(float64); ok {
		session.Exp = value
	}

	return session
}

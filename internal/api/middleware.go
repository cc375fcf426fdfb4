package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/kgjournal/internal/authz"
)

const (
	authCookieName      = "kgjournal_auth"
	authCookiePurpose   = "auth"
	contextPrincipalKey = "current_principal"
)

func currentPrincipal(c *fiber.Ctx) (authz.Principal, bool) {
	principal, ok := c.Locals(contextPrincipalKey).(authz.Principal)
	return principal, ok
}

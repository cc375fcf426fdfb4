package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/kgjournal/internal/models"
)

func (handler *Handler) AdminOnly(c *fiber.Ctx) error {
	principal, ok := currentPrincipal(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if !principal.InGroup(models.GroupAdmin) {
		return apiError(c, fiber.StatusForbidden, "admin access required")
	}
	return c.Next()
}

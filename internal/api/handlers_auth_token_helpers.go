package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/kgjournal/internal/services"
)

func (handler *Handler) setAuthCookie(c *fiber.Ctx, result services.SignInResult) error {
	sealed, err := handler.cookieCodec.seal(authCookiePurpose, []byte(result.Token))
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     authCookieName,
		Value:    sealed,
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  time.Now().Add(result.ExpiresIn),
	})
	return nil
}

func (handler *Handler) clearAuthCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}

func (handler *Handler) respondSignedIn(c *fiber.Ctx, result services.SignInResult) error {
	if err := handler.setAuthCookie(c, result); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.JSON(fiber.Map{
		"token":      result.Token,
		"token_type": "Bearer",
		"expires_in": int(result.ExpiresIn.Seconds()),
	})
}

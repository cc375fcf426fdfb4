package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/kgjournal/internal/authz"
	"github.com/terraincognita07/kgjournal/internal/tokens"
)

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	principal, err := handler.authenticateRequest(c)
	if err != nil {
		if errors.Is(err, tokens.ErrTokenExpired) {
			return apiError(c, fiber.StatusUnauthorized, "token expired")
		}
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals(contextPrincipalKey, principal)
	return c.Next()
}

// authenticateRequest prefers a bearer token and falls back to the sealed
// session cookie.
func (handler *Handler) authenticateRequest(c *fiber.Ctx) (authz.Principal, error) {
	if raw, ok := bearerToken(c.Get(fiber.HeaderAuthorization)); ok {
		return handler.issuer.Parse(raw)
	}

	sealed := strings.TrimSpace(c.Cookies(authCookieName))
	if sealed == "" {
		return authz.Principal{}, tokens.ErrTokenMissing
	}
	raw, err := handler.cookieCodec.open(authCookiePurpose, sealed)
	if err != nil {
		return authz.Principal{}, tokens.ErrTokenInvalid
	}
	return handler.issuer.Parse(string(raw))
}

func bearerToken(header string) (string, bool) {
	scheme, value, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

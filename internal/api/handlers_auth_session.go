package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/kgjournal/internal/authz"
	"github.com/terraincognita07/kgjournal/internal/models"
	"github.com/terraincognita07/kgjournal/internal/services"
)

const challengeNewPasswordRequired = "NEW_PASSWORD_REQUIRED"

func (handler *Handler) SignUp(c *fiber.Ctx) error {
	credentials := credentialsInput{}
	if err := c.BodyParser(&credentials); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	user, err := handler.authService.SignUp(credentials.Email, credentials.Password)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to create account")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    user.ID,
		"email": user.Email,
	})
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	credentials := credentialsInput{}
	if err := c.BodyParser(&credentials); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	now := time.Now()
	limiterKey := loginLimiterKey(c, credentials.Email)
	if handler.loginLimiter.blocked(limiterKey, now) {
		return apiError(c, fiber.StatusTooManyRequests, "too many login attempts")
	}

	result, err := handler.authService.SignIn(c.UserContext(), credentials.Email, credentials.Password)
	switch {
	case err == nil:
		handler.loginLimiter.reset(limiterKey)
		return handler.respondSignedIn(c, result)
	case errors.Is(err, services.ErrPasswordChangeRequired):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":     "password change required",
			"challenge": challengeNewPasswordRequired,
		})
	case errors.Is(err, services.ErrTokenIssuance):
		return apiError(c, fiber.StatusUnauthorized, "token issuance failed")
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrAuthCredentialsInvalid),
		errors.Is(err, services.ErrUserNotFound):
		handler.loginLimiter.addFailure(limiterKey, now)
		return apiError(c, fiber.StatusUnauthorized, "invalid credentials")
	default:
		return handler.respondServiceError(c, err, "failed to sign in")
	}
}

func (handler *Handler) CompleteNewPassword(c *fiber.Ctx) error {
	input := completeNewPasswordInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	now := time.Now()
	limiterKey := loginLimiterKey(c, input.Email)
	if handler.loginLimiter.blocked(limiterKey, now) {
		return apiError(c, fiber.StatusTooManyRequests, "too many login attempts")
	}

	result, err := handler.authService.CompleteNewPassword(c.UserContext(), input.Email, input.TemporaryPassword, input.NewPassword)
	switch {
	case err == nil:
		handler.loginLimiter.reset(limiterKey)
		return handler.respondSignedIn(c, result)
	case errors.Is(err, services.ErrTokenIssuance):
		return apiError(c, fiber.StatusUnauthorized, "token issuance failed")
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrAuthCredentialsInvalid),
		errors.Is(err, services.ErrUserNotFound):
		handler.loginLimiter.addFailure(limiterKey, now)
		return apiError(c, fiber.StatusUnauthorized, "invalid credentials")
	default:
		return handler.respondServiceError(c, err, "failed to set password")
	}
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) Me(c *fiber.Ctx) error {
	principal, _ := currentPrincipal(c)
	groups := principal.Groups
	if groups == nil {
		groups = []string{}
	}
	return c.JSON(fiber.Map{
		"sub":      principal.Subject,
		"email":    principal.Email,
		"groups":   groups,
		"provider": principal.Provider,
		"claims":   principal.Claims,
	})
}

// UpdateAttributes changes the caller's custom attributes. The new values
// reach the token at the next sign-in.
func (handler *Handler) UpdateAttributes(c *fiber.Ctx) error {
	principal, err := handler.userPoolPrincipal(c)
	if err != nil {
		return apiError(c, fiber.StatusForbidden, "access denied")
	}
	input := attributesInput{}
	if err := c.BodyParser(&input); err != nil || len(input.Attributes) == 0 {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	user, err := handler.authService.UpdateAttributes(principal.Subject, input.Attributes)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to update attributes")
	}
	return c.JSON(fiber.Map{"attributes": user.UserAttributes()})
}

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	principal, err := handler.userPoolPrincipal(c)
	if err != nil {
		return apiError(c, fiber.StatusForbidden, "access denied")
	}
	input := changePasswordInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	err = handler.authService.ChangePassword(principal.Subject, input.CurrentPassword, input.NewPassword)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return apiError(c, fiber.StatusBadRequest, "invalid current password")
	}
	if err != nil {
		return handler.respondServiceError(c, err, "failed to change password")
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) AddUserToGroup(c *fiber.Ctx) error {
	group := c.Params("group")
	if group != models.GroupAdmin {
		return apiError(c, fiber.StatusBadRequest, "unknown group")
	}
	user, err := handler.authService.AddToGroup(c.Params("id"), group)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to update groups")
	}
	return c.JSON(fiber.Map{"id": user.ID, "groups": user.Groups})
}

func (handler *Handler) userPoolPrincipal(c *fiber.Ctx) (authz.Principal, error) {
	principal, ok := currentPrincipal(c)
	if !ok || principal.Provider != authz.ProviderUserPool {
		return authz.Principal{}, authz.ErrAccessDenied
	}
	return principal, nil
}

package api

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/kgjournal/internal/authz"
	"github.com/terraincognita07/kgjournal/internal/identity"
	"github.com/terraincognita07/kgjournal/internal/schema"
	"github.com/terraincognita07/kgjournal/internal/services"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func validationError(c *fiber.Ctx, err *schema.ValidationError) error {
	payload := fiber.Map{"error": err.Error()}
	if err.Field != "" {
		payload["field"] = err.Field
	}
	return c.Status(fiber.StatusBadRequest).JSON(payload)
}

// respondServiceError maps service sentinels to statuses. Unknown errors are
// logged and reported as fallback.
func (handler *Handler) respondServiceError(c *fiber.Ctx, err error, fallback string) error {
	var invalid *schema.ValidationError
	switch {
	case errors.As(err, &invalid):
		return validationError(c, invalid)
	case errors.Is(err, authz.ErrAccessDenied):
		return apiError(c, fiber.StatusForbidden, "access denied")
	case errors.Is(err, schema.ErrUnknownSchema),
		errors.Is(err, schema.ErrUnknownModel),
		errors.Is(err, services.ErrUnknownRelation),
		errors.Is(err, services.ErrRecordNotFound),
		errors.Is(err, services.ErrCompanyNotFound),
		errors.Is(err, services.ErrUserNotFound):
		return apiError(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, services.ErrRecordExists),
		errors.Is(err, services.ErrUserExists):
		return apiError(c, fiber.StatusConflict, errorMessage(err))
	case errors.Is(err, services.ErrRecordIDMismatch),
		errors.Is(err, services.ErrCompanyInvalidInput),
		errors.Is(err, services.ErrCompanyAmbiguous),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrAuthCredentialsInvalid),
		errors.Is(err, identity.ErrInvalidAttribute):
		return apiError(c, fiber.StatusBadRequest, err.Error())
	default:
		handler.logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return apiError(c, fiber.StatusInternalServerError, fallback)
	}
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrUserExists):
		return "email already exists"
	case errors.Is(err, services.ErrRecordExists):
		return "record already exists"
	default:
		return err.Error()
	}
}

func parseJSONObject(c *fiber.Ctx) (map[string]any, error) {
	payload := map[string]any{}
	if len(c.Body()) == 0 {
		return nil, errors.New("empty body")
	}
	if err := c.BodyParser(&payload); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	return payload, nil
}

func setAttachmentHeaders(c *fiber.Ctx, contentType string, filename string) {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
}

package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/kgjournal/internal/services"
)

func (handler *Handler) ExportJSON(c *fiber.Ctx) error {
	principal, _ := currentPrincipal(c)
	now := time.Now().In(handler.location)

	document, err := handler.exportService.BuildJSON(principal, c.Query("owner"), now)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to build export")
	}
	serialized, err := handler.exportService.MarshalJSON(document)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build export")
	}

	setAttachmentHeaders(c, fiber.MIMEApplicationJSON, services.ExportFilename(document.Owner, now, "json"))
	return c.Send(serialized)
}

func (handler *Handler) ExportCSV(c *fiber.Ctx) error {
	principal, _ := currentPrincipal(c)
	now := time.Now().In(handler.location)

	body, err := handler.exportService.BuildCSV(principal, c.Params("schema"), c.Params("model"))
	if err != nil {
		return handler.respondServiceError(c, err, "failed to build export")
	}

	setAttachmentHeaders(c, "text/csv; charset=utf-8", services.ExportFilename(c.Params("model"), now, "csv"))
	return c.Send(body)
}

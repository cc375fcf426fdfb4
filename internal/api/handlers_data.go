package api

import (
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) ListRecords(c *fiber.Ctx) error {
	principal, _ := currentPrincipal(c)
	documents, err := handler.recordService.List(principal, c.Params("schema"), c.Params("model"))
	if err != nil {
		return handler.respondServiceError(c, err, "failed to list records")
	}
	return c.JSON(fiber.Map{"items": documents})
}

func (handler *Handler) CreateRecord(c *fiber.Ctx) error {
	principal, _ := currentPrincipal(c)
	payload, err := parseJSONObject(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	document, err := handler.recordService.Create(principal, c.Params("schema"), c.Params("model"), payload)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to create record")
	}
	return c.Status(fiber.StatusCreated).JSON(document)
}

func (handler *Handler) GetRecord(c *fiber.Ctx) error {
	principal, _ := currentPrincipal(c)
	document, err := handler.recordService.Get(principal, c.Params("schema"), c.Params("model"), c.Params("id"))
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load record")
	}
	return c.JSON(document)
}

func (handler *Handler) UpdateRecord(c *fiber.Ctx) error {
	principal, _ := currentPrincipal(c)
	patch, err := parseJSONObject(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	document, err := handler.recordService.Update(principal, c.Params("schema"), c.Params("model"), c.Params("id"), patch)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to update record")
	}
	return c.JSON(document)
}

func (handler *Handler) DeleteRecord(c *fiber.Ctx) error {
	principal, _ := currentPrincipal(c)
	document, err := handler.recordService.Delete(principal, c.Params("schema"), c.Params("model"), c.Params("id"))
	if err != nil {
		return handler.respondServiceError(c, err, "failed to delete record")
	}
	return c.JSON(document)
}

// GetRelated answers null for a belongsTo reference that names no readable
// record.
func (handler *Handler) GetRelated(c *fiber.Ctx) error {
	principal, _ := currentPrincipal(c)
	related, err := handler.recordService.Related(principal, c.Params("schema"), c.Params("model"), c.Params("id"), c.Params("relation"))
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load relation")
	}
	return c.JSON(related)
}

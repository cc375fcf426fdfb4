package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/kgjournal/internal/schema"
)

func (handler *Handler) ListSchemas(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"auth":    handler.identity,
		"schemas": handler.registry.Schemas(),
	})
}

func (handler *Handler) GetModel(c *fiber.Ctx) error {
	model, err := handler.registry.Resolve(c.Params("schema"), c.Params("model"))
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load model")
	}
	return c.JSON(fiber.Map{
		"schema": model.Schema().Name,
		"model":  model,
		"policy": model.Policy(),
		"owner":  schema.OwnerField,
	})
}

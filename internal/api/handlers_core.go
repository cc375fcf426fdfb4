package api

import (
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) Health(c *fiber.Ctx) error {
	if sqlDB, err := handler.db.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	return apiError(c, fiber.StatusNotFound, "not found")
}

// ErrorHandler renders errors that escape the route handlers as JSON.
func (handler *Handler) ErrorHandler(c *fiber.Ctx, err error) error {
	if fiberErr, ok := err.(*fiber.Error); ok {
		return apiError(c, fiberErr.Code, fiberErr.Message)
	}
	handler.logger.Error("unhandled request error", "method", c.Method(), "path", c.Path(), "error", err)
	return apiError(c, fiber.StatusInternalServerError, "internal error")
}

package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/kgjournal/internal/services"
)

func (handler *Handler) ListCompanies(c *fiber.Ctx) error {
	if name := c.Query("name"); name != "" {
		company, err := handler.companyService.FindByName(name)
		if err != nil {
			return handler.respondServiceError(c, err, "failed to find company")
		}
		return c.JSON(fiber.Map{"items": []any{company}})
	}

	companies, err := handler.companyService.List()
	if err != nil {
		return handler.respondServiceError(c, err, "failed to list companies")
	}
	return c.JSON(fiber.Map{"items": companies})
}

func (handler *Handler) CreateCompany(c *fiber.Ctx) error {
	input := services.NewCompany{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	company, err := handler.companyService.Create(input)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to create company")
	}
	return c.Status(fiber.StatusCreated).JSON(company)
}

package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/favicon.ico", sendNoContent)
	registerAPIRoutes(app, handler)
	app.Use(handler.NotFound)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/signup", handler.SignUp)
	auth.Post("/login", handler.Login)
	auth.Post("/complete-new-password", handler.CompleteNewPassword)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)
	auth.Get("/me", handler.AuthRequired, handler.Me)
	auth.Put("/attributes", handler.AuthRequired, handler.UpdateAttributes)
	auth.Post("/change-password", handler.AuthRequired, handler.ChangePassword)

	users := api.Group("/users", handler.AuthRequired, handler.AdminOnly)
	users.Post("/:id/groups/:group", handler.AddUserToGroup)

	api.Get("/schemas", handler.ListSchemas)
	api.Get("/schemas/:schema/:model", handler.GetModel)

	data := api.Group("/data", handler.AuthRequired)
	data.Get("/:schema/:model", handler.ListRecords)
	data.Post("/:schema/:model", handler.CreateRecord)
	data.Get("/:schema/:model/:id", handler.GetRecord)
	data.Put("/:schema/:model/:id", handler.UpdateRecord)
	data.Delete("/:schema/:model/:id", handler.DeleteRecord)
	data.Get("/:schema/:model/:id/:relation", handler.GetRelated)

	companies := api.Group("/companies", handler.AuthRequired)
	companies.Get("", handler.ListCompanies)
	companies.Post("", handler.AdminOnly, handler.CreateCompany)

	export := api.Group("/export", handler.AuthRequired)
	export.Get("/json", handler.ExportJSON)
	export.Get("/csv/:schema/:model", handler.ExportCSV)
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

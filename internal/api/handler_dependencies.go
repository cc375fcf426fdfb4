package api

import (
	"github.com/terraincognita07/kgjournal/internal/db"
	"github.com/terraincognita07/kgjournal/internal/services"
	"gorm.io/gorm"
)

func (handler *Handler) withDependencies(database *gorm.DB) *Handler {
	handler.repositories = db.NewRepositories(database)
	handler.authService = services.NewAuthService(handler.repositories.Users, services.AuthOptions{
		Identity:       handler.identity,
		TokenTrigger:   handler.tokenTrigger,
		TriggerTimeout: handler.triggerTimeout,
		Issuer:         handler.issuer,
		UserPoolID:     handler.userPoolID,
		Logger:         handler.logger,
	})
	handler.recordService = services.NewRecordService(handler.registry, handler.repositories.Records, handler.logger)
	handler.companyService = services.NewCompanyService(handler.repositories.Companies)
	handler.exportService = services.NewExportService(handler.recordService)
	return handler
}

func (handler *Handler) AuthService() *services.AuthService {
	return handler.authService
}

func (handler *Handler) RecordService() *services.RecordService {
	return handler.recordService
}

package db

import (
	"github.com/terraincognita07/kgjournal/internal/models"
	"gorm.io/gorm"
)

type CompanyRepository struct {
	database *gorm.DB
}

func NewCompanyRepository(database *gorm.DB) *CompanyRepository {
	return &CompanyRepository{database: database}
}

func (repo *CompanyRepository) Create(company *models.Company) error {
	return repo.database.Create(company).Error
}

func (repo *CompanyRepository) List() ([]models.Company, error) {
	companies := make([]models.Company, 0)
	if err := repo.database.Order("name ASC, id ASC").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

func (repo *CompanyRepository) ListByName(name string) ([]models.Company, error) {
	companies := make([]models.Company, 0)
	if err := repo.database.Where("name = ?", name).Order("id ASC").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

func (repo *CompanyRepository) FindByID(companyID string) (models.Company, error) {
	var company models.Company
	if err := repo.database.Where("id = ?", companyID).First(&company).Error; err != nil {
		return models.Company{}, err
	}
	return company, nil
}

func (repo *CompanyRepository) ListByNameFold(name string) ([]models.Company, error) {
	companies := make([]models.Company, 0)
	if err := repo.database.Where("lower(name) = lower(?)", name).Order("id ASC").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

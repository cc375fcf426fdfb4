package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/kgjournal/internal/models"
	"gorm.io/gorm"
)

var (
	ErrCompanyNotFound     = errors.New("company not found")
	ErrCompanyAmbiguous    = errors.New("company name is ambiguous")
	ErrCompanyInvalidInput = errors.New("invalid company input")
)

type CompanyRepository interface {
	Create(company *models.Company) error
	List() ([]models.Company, error)
	ListByName(name string) ([]models.Company, error)
	ListByNameFold(name string) ([]models.Company, error)
	FindByID(companyID string) (models.Company, error)
}

type CompanyService struct {
	companies CompanyRepository
}

func NewCompanyService(companies CompanyRepository) *CompanyService {
	return &CompanyService{companies: companies}
}

type NewCompany struct {
	Name         string `json:"name"`
	Domain       string `json:"domain"`
	ContactEmail string `json:"contactEmail"`
}

func (service *CompanyService) Create(input NewCompany) (models.Company, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.Company{}, fmt.Errorf("%w: name is required", ErrCompanyInvalidInput)
	}
	contactEmail := ""
	if raw := strings.TrimSpace(input.ContactEmail); raw != "" {
		contactEmail = NormalizeAuthEmail(raw)
		if contactEmail == "" {
			return models.Company{}, fmt.Errorf("%w: contact email %q is not valid", ErrCompanyInvalidInput, raw)
		}
	}

	company := models.Company{
		ID:           uuid.NewString(),
		Name:         name,
		Domain:       strings.ToLower(strings.TrimSpace(input.Domain)),
		ContactEmail: contactEmail,
		CreatedAt:    time.Now().UTC(),
	}
	if err := service.companies.Create(&company); err != nil {
		return models.Company{}, err
	}
	return company, nil
}

func (service *CompanyService) List() ([]models.Company, error) {
	return service.companies.List()
}

func (service *CompanyService) FindByID(companyID string) (models.Company, error) {
	company, err := service.companies.FindByID(strings.TrimSpace(companyID))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Company{}, fmt.Errorf("%w: id %s", ErrCompanyNotFound, companyID)
	}
	return company, err
}

// FindByName prefers an exact match and falls back to a case-insensitive one.
// More than one match at the winning step is ambiguous.
func (service *CompanyService) FindByName(name string) (models.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Company{}, fmt.Errorf("%w: name is required", ErrCompanyInvalidInput)
	}

	for _, lookup := range []func(string) ([]models.Company, error){service.companies.ListByName, service.companies.ListByNameFold} {
		matches, err := lookup(name)
		if err != nil {
			return models.Company{}, err
		}
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], nil
		default:
			ids := make([]string, 0, len(matches))
			for _, match := range matches {
				ids = append(ids, match.ID)
			}
			return models.Company{}, fmt.Errorf("%w: %q matches %s", ErrCompanyAmbiguous, name, strings.Join(ids, ", "))
		}
	}
	return models.Company{}, fmt.Errorf("%w: %q", ErrCompanyNotFound, name)
}

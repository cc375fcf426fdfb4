package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/terraincognita07/kgjournal/internal/models"
	"gorm.io/gorm"
)

type stubCompanyRepo struct {
	companies []models.Company
}

func (repo *stubCompanyRepo) Create(company *models.Company) error {
	repo.companies = append(repo.companies, *company)
	return nil
}

func (repo *stubCompanyRepo) List() ([]models.Company, error) {
	return append([]models.Company(nil), repo.companies...), nil
}

func (repo *stubCompanyRepo) ListByName(name string) ([]models.Company, error) {
	matches := make([]models.Company, 0)
	for _, company := range repo.companies {
		if company.Name == name {
			matches = append(matches, company)
		}
	}
	return matches, nil
}

func (repo *stubCompanyRepo) ListByNameFold(name string) ([]models.Company, error) {
	matches := make([]models.Company, 0)
	for _, company := range repo.companies {
		if strings.EqualFold(company.Name, name) {
			matches = append(matches, company)
		}
	}
	return matches, nil
}

func (repo *stubCompanyRepo) FindByID(companyID string) (models.Company, error) {
	for _, company := range repo.companies {
		if company.ID == companyID {
			return company, nil
		}
	}
	return models.Company{}, gorm.ErrRecordNotFound
}

func TestCompanyFindByNamePrefersExactMatch(t *testing.T) {
	repo := &stubCompanyRepo{companies: []models.Company{
		{ID: "c-1", Name: "Acme"},
		{ID: "c-2", Name: "ACME"},
		{ID: "c-3", Name: "Globex"},
	}}
	service := NewCompanyService(repo)

	company, err := service.FindByName("Acme")
	if err != nil {
		t.Fatalf("FindByName() unexpected error: %v", err)
	}
	if company.ID != "c-1" {
		t.Fatalf("expected exact match c-1, got %s", company.ID)
	}

	company, err = service.FindByName("globex")
	if err != nil {
		t.Fatalf("FindByName() unexpected error: %v", err)
	}
	if company.ID != "c-3" {
		t.Fatalf("expected case-insensitive match c-3, got %s", company.ID)
	}

	if _, err := service.FindByName("acme"); !errors.Is(err, ErrCompanyAmbiguous) {
		t.Fatalf("expected ErrCompanyAmbiguous, got %v", err)
	}
	if _, err := service.FindByName("Initech"); !errors.Is(err, ErrCompanyNotFound) {
		t.Fatalf("expected ErrCompanyNotFound, got %v", err)
	}
}

func TestCompanyCreateValidatesInput(t *testing.T) {
	service := NewCompanyService(&stubCompanyRepo{})

	if _, err := service.Create(NewCompany{Name: "  "}); !errors.Is(err, ErrCompanyInvalidInput) {
		t.Fatalf("expected ErrCompanyInvalidInput, got %v", err)
	}
	if _, err := service.Create(NewCompany{Name: "Acme", ContactEmail: "nope"}); !errors.Is(err, ErrCompanyInvalidInput) {
		t.Fatalf("expected ErrCompanyInvalidInput for email, got %v", err)
	}

	company, err := service.Create(NewCompany{Name: " Acme ", Domain: "Acme.COM", ContactEmail: "Ops@Acme.com"})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if company.Name != "Acme" || company.Domain != "acme.com" || company.ContactEmail != "ops@acme.com" || company.ID == "" {
		t.Fatalf("unexpected company %#v", company)
	}

	found, err := service.FindByID(company.ID)
	if err != nil || found.ID != company.ID {
		t.Fatalf("FindByID() = %#v, %v", found, err)
	}
	if _, err := service.FindByID("missing"); !errors.Is(err, ErrCompanyNotFound) {
		t.Fatalf("expected ErrCompanyNotFound, got %v", err)
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/terraincognita07/kgjournal/internal/identity"
	"github.com/terraincognita07/kgjournal/internal/logging"
	"github.com/terraincognita07/kgjournal/internal/models"
)

var ErrProvisioningInvalidInput = errors.New("invalid provisioning input")

type CompanyRole string

const (
	RoleOwner    CompanyRole = "owner"
	RoleCustomer CompanyRole = "customer"
)

// Attribute returns the user attribute that carries the company id for role.
func (role CompanyRole) Attribute() (string, error) {
	switch CompanyRole(strings.ToLower(string(role))) {
	case RoleOwner:
		return models.AttributeOwnerID, nil
	case RoleCustomer:
		return models.AttributeCustomerID, nil
	default:
		return "", fmt.Errorf("%w: role must be owner or customer, got %q", ErrProvisioningInvalidInput, role)
	}
}

type PasswordMode string

const (
	PasswordTemporary PasswordMode = "temp"
	PasswordPermanent PasswordMode = "permanent"
)

type DirectoryUser struct {
	Username   string
	Attributes map[string]string
	Groups     []string
	Status     string
}

type DirectoryCreateInput struct {
	Username          string
	Password          string
	TemporaryPassword bool
	Attributes        map[string]string
	SuppressInvite    bool
}

// Directory is the administrative surface of a user pool. The local pool and
// AWS Cognito both implement it.
type Directory interface {
	GetUser(ctx context.Context, username string) (DirectoryUser, error)
	CreateUser(ctx context.Context, input DirectoryCreateInput) error
	SetPassword(ctx context.Context, username string, password string, permanent bool) error
	UpdateAttributes(ctx context.Context, username string, attributes map[string]string) error
	AddToGroup(ctx context.Context, username string, group string) error
}

type CompanyLookup interface {
	FindByName(name string) (models.Company, error)
}

type ProvisioningService struct {
	directory Directory
	companies CompanyLookup
	identity  identity.Config
	logger    *slog.Logger
}

func NewProvisioningService(directory Directory, companies CompanyLookup, config identity.Config, logger *slog.Logger) *ProvisioningService {
	return &ProvisioningService{
		directory: directory,
		companies: companies,
		identity:  config,
		logger:    logging.OrDiscard(logger),
	}
}

type SetupUserInput struct {
	Email       string
	Password    string
	CompanyName string
	Role        CompanyRole
	Mode        PasswordMode
	SendInvite  bool
}

type SetupUserResult struct {
	Username   string
	Company    models.Company
	Created    bool
	Attributes map[string]string
}

// SetupUser creates the user or resets an existing one, then tags it with
// the company id for its role.
func (service *ProvisioningService) SetupUser(ctx context.Context, input SetupUserInput) (SetupUserResult, error) {
	email := NormalizeAuthEmail(input.Email)
	if email == "" {
		return SetupUserResult{}, fmt.Errorf("%w: email %q is not valid", ErrProvisioningInvalidInput, input.Email)
	}
	password := strings.TrimSpace(input.Password)
	if password == "" {
		return SetupUserResult{}, fmt.Errorf("%w: password is required", ErrProvisioningInvalidInput)
	}
	mode := input.Mode
	if mode == "" {
		mode = PasswordTemporary
	}
	if mode != PasswordTemporary && mode != PasswordPermanent {
		return SetupUserResult{}, fmt.Errorf("%w: mode must be temp or permanent, got %q", ErrProvisioningInvalidInput, mode)
	}
	attribute, err := input.Role.Attribute()
	if err != nil {
		return SetupUserResult{}, err
	}

	company, err := service.companies.FindByName(input.CompanyName)
	if err != nil {
		return SetupUserResult{}, err
	}
	attributes := map[string]string{attribute: company.ID}
	if err := service.identity.ValidateAttributes(attributes); err != nil {
		return SetupUserResult{}, err
	}

	result := SetupUserResult{Username: email, Company: company, Attributes: attributes}
	_, err = service.directory.GetUser(ctx, email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		result.Created = true
		err = service.directory.CreateUser(ctx, DirectoryCreateInput{
			Username:          email,
			Password:          password,
			TemporaryPassword: mode == PasswordTemporary,
			Attributes:        attributes,
			SuppressInvite:    !input.SendInvite,
		})
		if err != nil {
			return SetupUserResult{}, fmt.Errorf("create user %s: %w", email, err)
		}
	case err != nil:
		return SetupUserResult{}, fmt.Errorf("look up user %s: %w", email, err)
	default:
		if err := service.directory.SetPassword(ctx, email, password, mode == PasswordPermanent); err != nil {
			return SetupUserResult{}, fmt.Errorf("set password for %s: %w", email, err)
		}
		if err := service.directory.UpdateAttributes(ctx, email, attributes); err != nil {
			return SetupUserResult{}, fmt.Errorf("update attributes for %s: %w", email, err)
		}
	}

	service.logger.Info("user provisioned",
		"user", email,
		"company", company.ID,
		"role", string(input.Role),
		"mode", string(mode),
		"created", result.Created,
	)
	return result, nil
}

// SetCompanyAttribute points an existing user's owner or customer attribute at
// the named company.
func (service *ProvisioningService) SetCompanyAttribute(ctx context.Context, username string, attributeAlias string, companyName string) (string, models.Company, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", models.Company{}, fmt.Errorf("%w: username is required", ErrProvisioningInvalidInput)
	}
	attribute, err := service.identity.ResolveAttribute(attributeAlias)
	if err != nil {
		return "", models.Company{}, err
	}
	company, err := service.companies.FindByName(companyName)
	if err != nil {
		return "", models.Company{}, err
	}
	if err := service.identity.ValidateAttribute(attribute, company.ID); err != nil {
		return "", models.Company{}, err
	}

	if _, err := service.directory.GetUser(ctx, username); err != nil {
		return "", models.Company{}, fmt.Errorf("look up user %s: %w", username, err)
	}
	if err := service.directory.UpdateAttributes(ctx, username, map[string]string{attribute: company.ID}); err != nil {
		return "", models.Company{}, fmt.Errorf("update attributes for %s: %w", username, err)
	}
	service.logger.Info("user attribute set", "user", username, "attribute", attribute, "company", company.ID)
	return attribute, company, nil
}

func (service *ProvisioningService) AddToGroup(ctx context.Context, username string, group string) error {
	username = strings.TrimSpace(username)
	group = strings.TrimSpace(group)
	if username == "" || group == "" {
		return fmt.Errorf("%w: username and group are required", ErrProvisioningInvalidInput)
	}
	if _, err := service.directory.GetUser(ctx, username); err != nil {
		return fmt.Errorf("look up user %s: %w", username, err)
	}
	return service.directory.AddToGroup(ctx, username, group)
}

// ResetPassword assigns a generated temporary password and returns it.
func (service *ProvisioningService) ResetPassword(ctx context.Context, username string) (string, error) {
	username = strings.TrimSpace(username)
	if _, err := service.directory.GetUser(ctx, username); err != nil {
		return "", fmt.Errorf("look up user %s: %w", username, err)
	}
	temporary, err := GenerateTemporaryPassword(12)
	if err != nil {
		return "", fmt.Errorf("generate temporary password: %w", err)
	}
	if err := service.directory.SetPassword(ctx, username, temporary, false); err != nil {
		return "", fmt.Errorf("set password for %s: %w", username, err)
	}
	return temporary, nil
}

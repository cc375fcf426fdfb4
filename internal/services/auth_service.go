package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/kgjournal/internal/authz"
	"github.com/terraincognita07/kgjournal/internal/identity"
	"github.com/terraincognita07/kgjournal/internal/logging"
	"github.com/terraincognita07/kgjournal/internal/models"
	"github.com/terraincognita07/kgjournal/internal/tokens"
	"github.com/terraincognita07/kgjournal/internal/trigger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrUserExists             = errors.New("user already exists")
	ErrUserNotFound           = errors.New("user not found")
	ErrPasswordChangeRequired = errors.New("password change required")
	ErrTokenIssuance          = errors.New("token issuance failed")
)

type AuthUserRepository interface {
	ExistsByNormalizedEmail(email string) (bool, error)
	FindByNormalizedEmail(email string) (models.User, error)
	FindByID(userID string) (models.User, error)
	Create(user *models.User) error
	Save(user *models.User) error
}

type AuthOptions struct {
	Identity       identity.Config
	TokenTrigger   trigger.HandlerFunc
	TriggerTimeout time.Duration
	Issuer         *tokens.Issuer
	UserPoolID     string
	PasswordPolicy PasswordPolicy
	Logger         *slog.Logger
}

// AuthService is the local user pool: it owns credentials and attributes and
// issues ID tokens through the pre-token-generation trigger.
type AuthService struct {
	users          AuthUserRepository
	identity       identity.Config
	tokenTrigger   trigger.HandlerFunc
	triggerTimeout time.Duration
	issuer         *tokens.Issuer
	userPoolID     string
	passwords      PasswordPolicy
	logger         *slog.Logger
}

func NewAuthService(users AuthUserRepository, options AuthOptions) *AuthService {
	if options.TriggerTimeout <= 0 {
		options.TriggerTimeout = trigger.DefaultTimeout
	}
	if options.PasswordPolicy == (PasswordPolicy{}) {
		options.PasswordPolicy = DefaultPasswordPolicy()
	}
	if options.UserPoolID == "" {
		options.UserPoolID = "local"
	}
	return &AuthService{
		users:          users,
		identity:       options.Identity,
		tokenTrigger:   options.TokenTrigger,
		triggerTimeout: options.TriggerTimeout,
		issuer:         options.Issuer,
		userPoolID:     options.UserPoolID,
		passwords:      options.PasswordPolicy,
		logger:         logging.OrDiscard(options.Logger),
	}
}

type SignInResult struct {
	Token     string
	ExpiresIn time.Duration
	User      models.User
}

func (service *AuthService) Identity() identity.Config {
	return service.identity
}

func (service *AuthService) FindByID(userID string) (models.User, error) {
	return service.findUser(service.users.FindByID(userID))
}

func (service *AuthService) FindByEmail(email string) (models.User, error) {
	normalized := NormalizeAuthEmail(email)
	if normalized == "" {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	return service.findUser(service.users.FindByNormalizedEmail(normalized))
}

func (service *AuthService) findUser(user models.User, err error) (models.User, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

type NewUser struct {
	Email             string
	Password          string
	Attributes        map[string]string
	Groups            []string
	EmailVerified     bool
	TemporaryPassword bool
}

// CreateUser registers a user after checking the password policy and the
// declared attribute constraints.
func (service *AuthService) CreateUser(input NewUser) (models.User, error) {
	email, password, err := NormalizeCredentialsInput(input.Email, input.Password)
	if err != nil {
		return models.User{}, err
	}
	if err := service.passwords.Validate(password); err != nil {
		return models.User{}, err
	}
	if err := service.identity.ValidateAttributes(input.Attributes); err != nil {
		return models.User{}, err
	}

	exists, err := service.users.ExistsByNormalizedEmail(email)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:                 uuid.NewString(),
		Email:              email,
		PasswordHash:       string(hash),
		EmailVerified:      input.EmailVerified,
		MustChangePassword: input.TemporaryPassword,
		Attributes:         copyAttributes(input.Attributes),
		Groups:             append([]string{}, input.Groups...),
		CreatedAt:          time.Now().UTC(),
	}
	if err := service.users.Create(&user); err != nil {
		return models.User{}, err
	}
	service.logger.Info("user created", "user", user.ID, "temporary_password", input.TemporaryPassword)
	return user, nil
}

// SignUp is self-service registration.
func (service *AuthService) SignUp(email string, password string) (models.User, error) {
	return service.CreateUser(NewUser{Email: email, Password: password})
}

func (service *AuthService) authenticate(email string, password string) (models.User, error) {
	normalizedEmail, normalizedPassword, err := NormalizeCredentialsInput(email, password)
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	user, err := service.users.FindByNormalizedEmail(normalizedEmail)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(normalizedPassword)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (service *AuthService) SignIn(ctx context.Context, email string, password string) (SignInResult, error) {
	user, err := service.authenticate(email, password)
	if err != nil {
		return SignInResult{}, err
	}
	if user.MustChangePassword {
		return SignInResult{}, ErrPasswordChangeRequired
	}
	return service.IssueToken(ctx, user)
}

// CompleteNewPassword finishes the temporary-password challenge and signs the
// user in. Only users holding a temporary password have a challenge to answer.
func (service *AuthService) CompleteNewPassword(ctx context.Context, email string, temporaryPassword string, newPassword string) (SignInResult, error) {
	user, err := service.authenticate(email, temporaryPassword)
	if err != nil {
		return SignInResult{}, err
	}
	if !user.MustChangePassword {
		return SignInResult{}, ErrInvalidCredentials
	}
	if err := service.setPassword(&user, newPassword, false); err != nil {
		return SignInResult{}, err
	}
	return service.IssueToken(ctx, user)
}

func (service *AuthService) ChangePassword(userID string, currentPassword string, newPassword string) error {
	user, err := service.FindByID(userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(strings.TrimSpace(currentPassword))) != nil {
		return ErrInvalidCredentials
	}
	return service.setPassword(&user, newPassword, false)
}

// SetPassword is the administrative reset. A temporary password forces a
// change at the next sign-in.
func (service *AuthService) SetPassword(userID string, password string, temporary bool) error {
	user, err := service.FindByID(userID)
	if err != nil {
		return err
	}
	return service.setPassword(&user, password, temporary)
}

func (service *AuthService) setPassword(user *models.User, password string, temporary bool) error {
	password = strings.TrimSpace(password)
	if err := service.passwords.Validate(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	user.MustChangePassword = temporary
	return service.users.Save(user)
}

// UpdateAttributes validates and merges attributes onto the user.
func (service *AuthService) UpdateAttributes(userID string, attributes map[string]string) (models.User, error) {
	if err := service.identity.ValidateAttributes(attributes); err != nil {
		return models.User{}, err
	}
	user, err := service.FindByID(userID)
	if err != nil {
		return models.User{}, err
	}
	if user.Attributes == nil {
		user.Attributes = make(map[string]string, len(attributes))
	}
	for name, value := range attributes {
		user.Attributes[name] = value
	}
	if err := service.users.Save(&user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (service *AuthService) AddToGroup(userID string, group string) (models.User, error) {
	group = strings.TrimSpace(group)
	if group == "" {
		return models.User{}, errors.New("group name is required")
	}
	user, err := service.FindByID(userID)
	if err != nil {
		return models.User{}, err
	}
	if user.InGroup(group) {
		return user, nil
	}
	user.Groups = append(user.Groups, group)
	if err := service.users.Save(&user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (service *AuthService) MarkEmailVerified(userID string) error {
	user, err := service.FindByID(userID)
	if err != nil {
		return err
	}
	user.EmailVerified = true
	return service.users.Save(&user)
}

// IssueToken runs the pre-token-generation trigger once and signs the
// resulting claims. Any trigger failure aborts issuance.
func (service *AuthService) IssueToken(ctx context.Context, user models.User) (SignInResult, error) {
	if service.issuer == nil {
		return SignInResult{}, fmt.Errorf("%w: no token issuer configured", ErrTokenIssuance)
	}

	claims := map[string]any{
		models.AttributeEmail:         user.Email,
		models.AttributeEmailVerified: user.EmailVerified,
	}
	groups := append([]string(nil), user.Groups...)

	if service.tokenTrigger != nil {
		event := trigger.NewEvent(service.userPoolID, user.ID, user.UserAttributes(), groups)
		result, err := trigger.Invoke(ctx, service.triggerTimeout, service.tokenTrigger, event)
		if err != nil {
			service.logger.WarnContext(ctx, "token trigger failed", "user", user.ID, "error", err)
			return SignInResult{}, fmt.Errorf("%w: %v", ErrTokenIssuance, err)
		}
		claims, groups = trigger.ApplyOverrides(claims, groups, result)
	}

	token, err := service.issuer.Issue(tokens.Subject{
		ID:       user.ID,
		Groups:   groups,
		Provider: authz.ProviderUserPool,
		Claims:   claims,
	})
	if err != nil {
		return SignInResult{}, fmt.Errorf("%w: %v", ErrTokenIssuance, err)
	}
	return SignInResult{Token: token, ExpiresIn: service.issuer.TTL(), User: user}, nil
}

// IssueServiceToken mints an identity-pool credential for non-user callers.
func (service *AuthService) IssueServiceToken(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("service name is required")
	}
	if service.issuer == nil {
		return "", fmt.Errorf("%w: no token issuer configured", ErrTokenIssuance)
	}
	return service.issuer.Issue(tokens.Subject{
		ID:       "service:" + name,
		Provider: authz.ProviderIdentityPool,
	})
}

func copyAttributes(attributes map[string]string) map[string]string {
	copied := make(map[string]string, len(attributes))
	for name, value := range attributes {
		copied[name] = value
	}
	return copied
}

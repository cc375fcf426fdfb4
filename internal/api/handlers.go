package api

import (
	"errors"
	"log/slog"
	"time"

	"github.com/terraincognita07/kgjournal/internal/db"
	"github.com/terraincognita07/kgjournal/internal/identity"
	"github.com/terraincognita07/kgjournal/internal/logging"
	"github.com/terraincognita07/kgjournal/internal/schema"
	"github.com/terraincognita07/kgjournal/internal/services"
	"github.com/terraincognita07/kgjournal/internal/tokens"
	"github.com/terraincognita07/kgjournal/internal/trigger"
	"gorm.io/gorm"
)

type Handler struct {
	db           *gorm.DB
	location     *time.Location
	cookieSecure bool
	logger       *slog.Logger
	cookieCodec  *secureCookieCodec
	loginLimiter *attemptLimiter

	identity       identity.Config
	registry       *schema.Registry
	issuer         *tokens.Issuer
	tokenTrigger   trigger.HandlerFunc
	triggerTimeout time.Duration
	userPoolID     string

	repositories   *db.Repositories
	authService    *services.AuthService
	recordService  *services.RecordService
	companyService *services.CompanyService
	exportService  *services.ExportService
}

// HandlerOptions carries everything the HTTP layer needs besides the database.
// TokenTrigger is the pre-token-generation trigger run on every sign-in.
type HandlerOptions struct {
	SecretKey      string
	Location       *time.Location
	CookieSecure   bool
	Logger         *slog.Logger
	Identity       identity.Config
	Registry       *schema.Registry
	Issuer         *tokens.Issuer
	TokenTrigger   trigger.HandlerFunc
	TriggerTimeout time.Duration
	UserPoolID     string
}

func NewHandler(database *gorm.DB, options HandlerOptions) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if options.SecretKey == "" {
		return nil, errors.New("secret key is required")
	}
	if options.Issuer == nil {
		return nil, errors.New("token issuer is required")
	}
	if options.Location == nil {
		options.Location = time.UTC
	}
	if options.Registry == nil {
		options.Registry = schema.Default()
	}

	codec, err := newSecureCookieCodec([]byte(options.SecretKey))
	if err != nil {
		return nil, err
	}

	handler := &Handler{
		db:             database,
		location:       options.Location,
		cookieSecure:   options.CookieSecure,
		logger:         logging.OrDiscard(options.Logger),
		cookieCodec:    codec,
		loginLimiter:   newAttemptLimiter(),
		identity:       options.Identity,
		registry:       options.Registry,
		issuer:         options.Issuer,
		tokenTrigger:   options.TokenTrigger,
		triggerTimeout: options.TriggerTimeout,
		userPoolID:     options.UserPoolID,
	}
	return handler.withDependencies(database), nil
}

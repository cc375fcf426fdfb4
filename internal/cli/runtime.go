package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/terraincognita07/kgjournal/internal/api"
	"github.com/terraincognita07/kgjournal/internal/authz"
	"github.com/terraincognita07/kgjournal/internal/awsclient"
	"github.com/terraincognita07/kgjournal/internal/backend"
	"github.com/terraincognita07/kgjournal/internal/cognito"
	"github.com/terraincognita07/kgjournal/internal/config"
	"github.com/terraincognita07/kgjournal/internal/db"
	"github.com/terraincognita07/kgjournal/internal/export"
	"github.com/terraincognita07/kgjournal/internal/identity"
	"github.com/terraincognita07/kgjournal/internal/models"
	"github.com/terraincognita07/kgjournal/internal/schema"
	"github.com/terraincognita07/kgjournal/internal/services"
	"github.com/terraincognita07/kgjournal/internal/tokens"
	"github.com/terraincognita07/kgjournal/internal/trigger"
	"gorm.io/gorm"
)

// operatorPrincipal is the caller used by administrative commands.
var operatorPrincipal = authz.Principal{
	Subject:  "kgjournal-cli",
	Groups:   []string{models.GroupAdmin},
	Provider: authz.ProviderUserPool,
}

// defineBackend composes the declared backend and narrows the trigger handle
// to apply runtime settings.
func defineBackend(cfg config.Config, logger *slog.Logger) (*backend.Backend, *backend.LambdaFunction, error) {
	setCompanyID := backend.NewLambdaFunction(backend.SetCompanyID(), trigger.SetCompanyID(logger))
	definition, err := backend.Define(identity.DefaultConfig(trigger.SetCompanyIDName), schema.Default(), setCompanyID)
	if err != nil {
		return nil, nil, err
	}
	function, err := definition.TriggerFunction()
	if err != nil {
		return nil, nil, err
	}
	if cfg.TriggerTimeout > 0 {
		if err := function.SetTimeout(cfg.TriggerTimeout); err != nil {
			return nil, nil, err
		}
	}
	function.AddEnvironment("LOG_LEVEL", cfg.LogLevel).AddEnvironment("LOG_FORMAT", "json")
	return definition, function, nil
}

type runtime struct {
	cfg          config.Config
	logger       *slog.Logger
	database     *gorm.DB
	repositories *db.Repositories
	definition   *backend.Backend
	handlerOpts  api.HandlerOptions
	auth         *services.AuthService
	records      *services.RecordService
	companies    *services.CompanyService
}

func openRuntime(cfg config.Config, logger *slog.Logger) (*runtime, error) {
	definition, function, err := defineBackend(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("define backend: %w", err)
	}

	database, err := db.OpenSQLiteWithLogger(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	options := api.HandlerOptions{
		SecretKey:      cfg.SecretKey,
		Location:       cfg.Location(),
		CookieSecure:   cfg.CookieSecure,
		Logger:         logger,
		Identity:       definition.Auth(),
		Registry:       definition.Data(),
		Issuer:         tokens.NewIssuer([]byte(cfg.SecretKey), cfg.Issuer, cfg.TokenTTL),
		TokenTrigger:   function.Handler(),
		TriggerTimeout: function.Timeout(),
		UserPoolID:     cfg.UserPoolID,
	}

	repositories := db.NewRepositories(database)
	return &runtime{
		cfg:          cfg,
		logger:       logger,
		database:     database,
		repositories: repositories,
		definition:   definition,
		handlerOpts:  options,
		auth: services.NewAuthService(repositories.Users, services.AuthOptions{
			Identity:       options.Identity,
			TokenTrigger:   options.TokenTrigger,
			TriggerTimeout: options.TriggerTimeout,
			Issuer:         options.Issuer,
			UserPoolID:     options.UserPoolID,
			Logger:         logger,
		}),
		records:   services.NewRecordService(options.Registry, repositories.Records, logger),
		companies: services.NewCompanyService(repositories.Companies),
	}, nil
}

func (rt *runtime) Close() error {
	sqlDB, err := rt.database.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// directory returns the Cognito user pool when one is configured and the
// local user pool otherwise.
func (rt *runtime) directory(ctx context.Context) (services.Directory, error) {
	if !rt.cfg.Cognito.Enabled() {
		return services.NewLocalDirectory(rt.auth), nil
	}
	awsConfig, err := awsclient.Load(ctx, rt.cfg.CognitoAWS())
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	directory, err := cognito.NewDirectory(cognito.NewClient(awsConfig), rt.cfg.Cognito.UserPoolID)
	if err != nil {
		return nil, err
	}
	return directory, nil
}

func (rt *runtime) provisioning(ctx context.Context) (*services.ProvisioningService, error) {
	directory, err := rt.directory(ctx)
	if err != nil {
		return nil, err
	}
	return services.NewProvisioningService(directory, rt.companies, rt.definition.Auth(), rt.logger), nil
}

// exportSink writes to S3 when requested and to a local directory otherwise.
func (rt *runtime) exportSink(ctx context.Context, toS3 bool, dir string) (services.ExportSink, error) {
	if !toS3 {
		if dir == "" {
			dir = rt.cfg.ExportDir
		}
		if dir == "" {
			return nil, errors.New("export directory is required")
		}
		return export.NewFileSink(dir), nil
	}
	awsConfig, err := awsclient.Load(ctx, rt.cfg.AWS)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	sink, err := export.NewS3Sink(export.NewS3Client(awsConfig, rt.cfg.ExportS3), rt.cfg.ExportS3)
	if err != nil {
		return nil, err
	}
	return sink, nil
}

// withRuntime opens the runtime for the duration of run.
func withRuntime(state *session, run func(rt *runtime) error) error {
	rt, err := openRuntime(state.cfg, state.logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rt.Close(); closeErr != nil {
			state.logger.Warn("close database", "error", closeErr)
		}
	}()
	return run(rt)
}

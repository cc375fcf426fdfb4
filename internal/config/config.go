// Package config loads runtime settings from defaults, an optional config file
// and KGJOURNAL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/terraincognita07/kgjournal/internal/awsclient"
	"github.com/terraincognita07/kgjournal/internal/export"
)

const (
	EnvPrefix = "KGJOURNAL"

	DefaultSecretKey = "change_me_in_production"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Port           string
	DBPath         string
	SecretKey      string
	TZ             string
	Issuer         string
	UserPoolID     string
	TriggerTimeout time.Duration
	TokenTTL       time.Duration
	CookieSecure   bool
	LogFormat      string
	LogLevel       string
	ExportDir      string
	ExportS3       export.S3Options
	Cognito        CognitoConfig
	AWS            awsclient.Settings
}

type CognitoConfig struct {
	UserPoolID string
	Region     string
	Profile    string
}

// Enabled reports whether provisioning commands should talk to Cognito
// instead of the local user pool.
func (cognito CognitoConfig) Enabled() bool {
	return strings.TrimSpace(cognito.UserPoolID) != ""
}

// New returns a viper instance with defaults and environment bindings in place.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("db_path", "data/kgjournal.db")
	v.SetDefault("secret_key", DefaultSecretKey)
	v.SetDefault("tz", "UTC")
	v.SetDefault("issuer", "kgjournal")
	v.SetDefault("user_pool_id", "local")
	v.SetDefault("trigger_timeout", 3*time.Second)
	v.SetDefault("token_ttl", time.Hour)
	v.SetDefault("cookie_secure", false)
	v.SetDefault("log_format", "text")
	v.SetDefault("log_level", "info")
	v.SetDefault("export.dir", "exports")
	v.SetDefault("export.s3.bucket", "")
	v.SetDefault("export.s3.prefix", "")
	v.SetDefault("export.s3.endpoint", "")
	v.SetDefault("cognito.user_pool_id", "")
	v.SetDefault("cognito.region", "")
	v.SetDefault("cognito.profile", "")
	v.SetDefault("aws.region", "")
	v.SetDefault("aws.access_key_id", "")
	v.SetDefault("aws.secret_access_key", "")
	v.SetDefault("aws.session_token", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path when it is set and decodes the merged settings.
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = New()
	}
	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%w: read %s: %v", ErrInvalidConfig, path, err)
		}
	}

	cfg := Config{
		Port:           strings.TrimSpace(v.GetString("port")),
		DBPath:         strings.TrimSpace(v.GetString("db_path")),
		SecretKey:      v.GetString("secret_key"),
		TZ:             strings.TrimSpace(v.GetString("tz")),
		Issuer:         strings.TrimSpace(v.GetString("issuer")),
		UserPoolID:     strings.TrimSpace(v.GetString("user_pool_id")),
		TriggerTimeout: v.GetDuration("trigger_timeout"),
		TokenTTL:       v.GetDuration("token_ttl"),
		CookieSecure:   v.GetBool("cookie_secure"),
		LogFormat:      strings.TrimSpace(v.GetString("log_format")),
		LogLevel:       strings.TrimSpace(v.GetString("log_level")),
		ExportDir:      strings.TrimSpace(v.GetString("export.dir")),
		ExportS3: export.S3Options{
			Bucket:   strings.TrimSpace(v.GetString("export.s3.bucket")),
			Prefix:   strings.TrimSpace(v.GetString("export.s3.prefix")),
			Endpoint: strings.TrimSpace(v.GetString("export.s3.endpoint")),
		},
		Cognito: CognitoConfig{
			UserPoolID: strings.TrimSpace(v.GetString("cognito.user_pool_id")),
			Region:     strings.TrimSpace(v.GetString("cognito.region")),
			Profile:    strings.TrimSpace(v.GetString("cognito.profile")),
		},
		AWS: awsclient.Settings{
			Region:          strings.TrimSpace(v.GetString("aws.region")),
			AccessKeyID:     strings.TrimSpace(v.GetString("aws.access_key_id")),
			SecretAccessKey: strings.TrimSpace(v.GetString("aws.secret_access_key")),
			SessionToken:    strings.TrimSpace(v.GetString("aws.session_token")),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) Validate() error {
	switch {
	case cfg.Port == "":
		return fmt.Errorf("%w: port is required", ErrInvalidConfig)
	case cfg.DBPath == "":
		return fmt.Errorf("%w: db_path is required", ErrInvalidConfig)
	case strings.TrimSpace(cfg.SecretKey) == "":
		return fmt.Errorf("%w: secret_key is required", ErrInvalidConfig)
	case cfg.TriggerTimeout <= 0:
		return fmt.Errorf("%w: trigger_timeout must be positive", ErrInvalidConfig)
	case cfg.TokenTTL <= 0:
		return fmt.Errorf("%w: token_ttl must be positive", ErrInvalidConfig)
	}
	if _, err := time.LoadLocation(cfg.TZ); err != nil {
		return fmt.Errorf("%w: tz %q: %v", ErrInvalidConfig, cfg.TZ, err)
	}
	return nil
}

// UsesDefaultSecret reports whether tokens are signed with the built-in key.
func (cfg Config) UsesDefaultSecret() bool {
	return cfg.SecretKey == DefaultSecretKey
}

func (cfg Config) Location() *time.Location {
	location, err := time.LoadLocation(cfg.TZ)
	if err != nil {
		return time.UTC
	}
	return location
}

// CognitoAWS returns the AWS settings for the Cognito client. Cognito-specific
// region and profile take precedence over the shared aws.* keys.
func (cfg Config) CognitoAWS() awsclient.Settings {
	settings := cfg.AWS
	if cfg.Cognito.Region != "" {
		settings.Region = cfg.Cognito.Region
	}
	if cfg.Cognito.Profile != "" {
		settings.Profile = cfg.Cognito.Profile
	}
	return settings
}

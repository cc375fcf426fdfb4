package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/kgjournal/internal/api"
	"github.com/terraincognita07/kgjournal/internal/config"
)

const minimumSecretKeyLength = 32

var insecureSecretKeys = map[string]struct{}{
	config.DefaultSecretKey:                      {},
	"replace_with_at_least_32_random_characters": {},
}

func newServeCommand(state *session) *cobra.Command {
	var allowInsecureSecret bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateServeSecret(state.cfg.SecretKey); err != nil {
				if !allowInsecureSecret {
					return err
				}
				state.logger.Warn("serving with an insecure secret key", "reason", err)
			}
			if _, err := validatePort(state.cfg.Port); err != nil {
				return err
			}
			return withRuntime(state, func(rt *runtime) error {
				return serve(cmd.Context(), state, rt)
			})
		},
	}
	cmd.Flags().BoolVar(&allowInsecureSecret, "allow-insecure-secret", false, "start even when secret_key is weak (development only)")
	cmd.Flags().String("port", "", "listen port")
	_ = state.viper.BindPFlag("port", cmd.Flags().Lookup("port"))
	return cmd
}

func serve(ctx context.Context, state *session, rt *runtime) error {
	handler, err := api.NewHandler(rt.database, rt.handlerOpts)
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	app := newFiberApp(handler)
	time.Local = state.cfg.Location()

	if ctx == nil {
		ctx = context.Background()
	}
	sigCtx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			state.logger.Error("server shutdown failed", "error", err)
		}
	}()

	state.logger.Info("kgjournal listening",
		"addr", "0.0.0.0:"+state.cfg.Port,
		"db", state.cfg.DBPath,
		"tz", state.cfg.TZ,
		"trigger_timeout", state.cfg.TriggerTimeout.String(),
	)
	if err := app.Listen(":" + state.cfg.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func newFiberApp(handler *api.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "kgjournal",
		DisableStartupMessage: true,
		ErrorHandler:          handler.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	api.RegisterRoutes(app, handler)
	return app
}

func validateServeSecret(secret string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return errors.New("secret_key is required")
	}
	if _, insecure := insecureSecretKeys[secret]; insecure {
		return errors.New("secret_key uses a placeholder value")
	}
	if len(secret) < minimumSecretKeyLength {
		return fmt.Errorf("secret_key must be at least %d characters", minimumSecretKeyLength)
	}
	return nil
}

func validatePort(raw string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q", raw)
	}
	return port, nil
}

// Package cli implements the kgjournal command tree.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/terraincognita07/kgjournal/internal/config"
	"github.com/terraincognita07/kgjournal/internal/logging"
)

// session holds what every subcommand shares once flags are parsed.
type session struct {
	viper      *viper.Viper
	configPath string
	cfg        config.Config
	logger     *slog.Logger
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
}

func NewRootCommand(stdin io.Reader, stdout io.Writer, stderr io.Writer) *cobra.Command {
	state := &session{
		viper:  config.New(),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}

	root := &cobra.Command{
		Use:           "kgjournal",
		Short:         "Food and symptom journal backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(state.viper, state.configPath)
			if err != nil {
				return err
			}
			logger, err := logging.New(state.stderr, cfg.LogFormat, cfg.LogLevel)
			if err != nil {
				return err
			}
			state.cfg = cfg
			state.logger = logger
			return nil
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&state.configPath, "config", "", "path to a YAML or JSON config file")
	flags.String("db-path", "", "SQLite database path")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	_ = state.viper.BindPFlag("db_path", flags.Lookup("db-path"))
	_ = state.viper.BindPFlag("log_level", flags.Lookup("log-level"))

	root.AddCommand(
		newServeCommand(state),
		newCompanyCommand(state),
		newUserCommand(state),
		newTokenCommand(state),
		newBackendCommand(state),
		newExportCommand(state),
	)
	return root
}

// Execute runs the command tree against the process streams.
func Execute() error {
	return NewRootCommand(os.Stdin, os.Stdout, os.Stderr).Execute()
}

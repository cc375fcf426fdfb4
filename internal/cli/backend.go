package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBackendCommand(state *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backend",
		Short: "Inspect the composed backend definition",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "describe",
		Short: "Print the auth, data and function resources as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			definition, function, err := defineBackend(state.cfg, state.logger)
			if err != nil {
				return err
			}
			manifest, err := definition.Manifest()
			if err != nil {
				return fmt.Errorf("render manifest: %w", err)
			}
			if _, err := state.stdout.Write(manifest); err != nil {
				return err
			}
			state.logger.Debug("trigger function resolved",
				"function", function.Name(),
				"environment", function.EnvironmentKeys(),
			)
			return nil
		},
	})
	return cmd
}

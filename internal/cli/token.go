package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTokenCommand(state *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue credentials",
	}
	cmd.AddCommand(newTokenServiceCommand(state))
	return cmd
}

// newTokenServiceCommand mints an identity-pool token for a non-user caller.
// Such tokens may read every record and write none.
func newTokenServiceCommand(state *session) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Issue an identity-pool token for a service caller",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(state, func(rt *runtime) error {
				token, err := rt.auth.IssueServiceToken(name)
				if err != nil {
					return err
				}
				fmt.Fprintln(state.stdout, token)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "service name recorded in the token subject")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

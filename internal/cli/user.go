package cli

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/kgjournal/internal/services"
)

func newUserCommand(state *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Provision and manage user pool accounts",
	}
	cmd.AddCommand(
		newUserSetupCommand(state),
		newUserSetAttributeCommand(state),
		newUserAddGroupCommand(state),
		newUserResetPasswordCommand(state),
		newUserListCommand(state),
	)
	return cmd
}

func newUserSetupCommand(state *session) *cobra.Command {
	var (
		input services.SetupUserInput
		role  string
		mode  string
	)
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create or reset a user and tag it with a company id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(input.Password) == "" {
				password, err := readPassword(state.stdin, state.stderr, "Password: ")
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				input.Password = password
			}
			input.Role = services.CompanyRole(role)
			input.Mode = services.PasswordMode(mode)

			return withRuntime(state, func(rt *runtime) error {
				provisioning, err := rt.provisioning(cmd.Context())
				if err != nil {
					return err
				}
				result, err := provisioning.SetupUser(cmd.Context(), input)
				if err != nil {
					return err
				}
				action := "Updated"
				if result.Created {
					action = "Created"
				}
				fmt.Fprintf(state.stdout, "%s user %s\n", action, result.Username)
				for _, name := range sortedKeys(result.Attributes) {
					fmt.Fprintf(state.stdout, "  %s = %s (%s)\n", name, result.Attributes[name], result.Company.Name)
				}
				return nil
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&input.Email, "email", "", "user email address")
	flags.StringVar(&input.Password, "password", "", "password (prompted when omitted)")
	flags.StringVar(&input.CompanyName, "company", "", "company name")
	flags.StringVar(&role, "role", string(services.RoleOwner), "company role: owner or customer")
	flags.StringVar(&mode, "mode", string(services.PasswordTemporary), "password mode: temp or permanent")
	flags.BoolVar(&input.SendInvite, "send-invite", false, "send the user pool invitation message")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}

func newUserSetAttributeCommand(state *session) *cobra.Command {
	var username, attribute, company string
	cmd := &cobra.Command{
		Use:   "set-attribute",
		Short: "Point a user's ownerId or customerId at a company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(state, func(rt *runtime) error {
				provisioning, err := rt.provisioning(cmd.Context())
				if err != nil {
					return err
				}
				name, resolved, err := provisioning.SetCompanyAttribute(cmd.Context(), username, attribute, company)
				if err != nil {
					return err
				}
				fmt.Fprintf(state.stdout, "Set %s = %s for %s\n", name, resolved.ID, username)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "user email address")
	cmd.Flags().StringVar(&attribute, "attribute", "", "ownerId, customerId or the full custom: name")
	cmd.Flags().StringVar(&company, "company", "", "company name")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("attribute")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}

func newUserAddGroupCommand(state *session) *cobra.Command {
	var username, group string
	cmd := &cobra.Command{
		Use:   "add-group",
		Short: "Add a user to a group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(state, func(rt *runtime) error {
				provisioning, err := rt.provisioning(cmd.Context())
				if err != nil {
					return err
				}
				if err := provisioning.AddToGroup(cmd.Context(), username, group); err != nil {
					return err
				}
				fmt.Fprintf(state.stdout, "Added %s to %s\n", username, group)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "user email address")
	cmd.Flags().StringVar(&group, "group", "", "group name")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("group")
	return cmd
}

func newUserResetPasswordCommand(state *session) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Assign a temporary password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(state, func(rt *runtime) error {
				provisioning, err := rt.provisioning(cmd.Context())
				if err != nil {
					return err
				}
				temporary, err := provisioning.ResetPassword(cmd.Context(), username)
				if err != nil {
					return err
				}
				fmt.Fprintln(state.stdout, "Password reset successful")
				fmt.Fprintf(state.stdout, "Temporary password: %s\n", temporary)
				fmt.Fprintln(state.stdout, "User must change password on next login.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "user email address")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newUserListCommand(state *session) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List local user pool accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(state, func(rt *runtime) error {
				users, err := rt.repositories.Users.List()
				if err != nil {
					return err
				}
				writer := tabwriter.NewWriter(state.stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(writer, "EMAIL\tGROUPS\tSTATUS\tATTRIBUTES")
				for _, user := range users {
					status := "CONFIRMED"
					if user.MustChangePassword {
						status = "FORCE_CHANGE_PASSWORD"
					}
					attributes := make([]string, 0, len(user.Attributes))
					for _, name := range sortedKeys(user.Attributes) {
						attributes = append(attributes, name+"="+user.Attributes[name])
					}
					fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", user.Email, strings.Join(user.Groups, ","), status, strings.Join(attributes, " "))
				}
				if err := writer.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(state.stdout, "%d user(s)\n", len(users))
				return nil
			})
		},
	}
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

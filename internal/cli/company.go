package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/kgjournal/internal/services"
)

func newCompanyCommand(state *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "company",
		Short: "Manage companies referenced by user attributes",
	}
	cmd.AddCommand(newCompanyCreateCommand(state), newCompanyListCommand(state))
	return cmd
}

func newCompanyCreateCommand(state *session) *cobra.Command {
	input := services.NewCompany{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(state, func(rt *runtime) error {
				company, err := rt.companies.Create(input)
				if err != nil {
					return err
				}
				fmt.Fprintf(state.stdout, "Created company %s (%s)\n", company.Name, company.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&input.Name, "name", "", "company name")
	cmd.Flags().StringVar(&input.Domain, "domain", "", "company domain")
	cmd.Flags().StringVar(&input.ContactEmail, "contact-email", "", "contact email address")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newCompanyListCommand(state *session) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List companies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(state, func(rt *runtime) error {
				companies, err := rt.companies.List()
				if err != nil {
					return err
				}
				writer := tabwriter.NewWriter(state.stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(writer, "ID\tNAME\tDOMAIN\tCONTACT")
				for _, company := range companies {
					fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", company.ID, company.Name, company.Domain, company.ContactEmail)
				}
				return writer.Flush()
			})
		},
	}
}

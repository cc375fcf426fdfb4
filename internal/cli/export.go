package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/kgjournal/internal/services"
)

type exportTarget struct {
	dir  string
	toS3 bool
}

func (target *exportTarget) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&target.dir, "out", "", "local output directory (defaults to export.dir)")
	cmd.Flags().BoolVar(&target.toS3, "s3", false, "upload to the configured S3 bucket")
	cmd.MarkFlagsMutuallyExclusive("out", "s3")
}

func newExportCommand(state *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export journal records",
	}
	cmd.AddCommand(newExportJSONCommand(state), newExportCSVCommand(state))
	return cmd
}

func newExportJSONCommand(state *session) *cobra.Command {
	var (
		owner  string
		target exportTarget
	)
	cmd := &cobra.Command{
		Use:   "json",
		Short: "Export every record owned by one user as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(state, func(rt *runtime) error {
				sink, err := rt.exportSink(cmd.Context(), target.toS3, target.dir)
				if err != nil {
					return err
				}
				location, err := services.NewExportService(rt.records).WriteJSON(cmd.Context(), sink, operatorPrincipal, owner, time.Now())
				if err != nil {
					return err
				}
				fmt.Fprintf(state.stdout, "Exported to %s\n", location)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner id (the user's sub)")
	_ = cmd.MarkFlagRequired("owner")
	target.bind(cmd)
	return cmd
}

func newExportCSVCommand(state *session) *cobra.Command {
	var (
		schemaName string
		modelName  string
		target     exportTarget
	)
	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Export one model as a CSV table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if schemaName == "" || modelName == "" {
				return errors.New("--schema and --model are required")
			}
			return withRuntime(state, func(rt *runtime) error {
				sink, err := rt.exportSink(cmd.Context(), target.toS3, target.dir)
				if err != nil {
					return err
				}
				body, err := services.NewExportService(rt.records).BuildCSV(operatorPrincipal, schemaName, modelName)
				if err != nil {
					return err
				}
				name := services.ExportFilename(schemaName+"-"+modelName, time.Now(), "csv")
				location, err := sink.Put(cmd.Context(), name, "text/csv", body)
				if err != nil {
					return err
				}
				fmt.Fprintf(state.stdout, "Exported to %s\n", location)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&schemaName, "schema", "", "schema name")
	cmd.Flags().StringVar(&modelName, "model", "", "model name")
	target.bind(cmd)
	return cmd
}

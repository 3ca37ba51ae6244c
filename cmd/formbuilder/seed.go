package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/openapi"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

func newSeedCmd(a *app) *cobra.Command {
	var (
		operationID string
		to          string
		list        bool
		timeout     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "seed <openapi>",
		Short: "Builds a schema from an OpenAPI operation request body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := openapi.ParseSource(args[0])
			if err != nil {
				return err
			}
			loader := openapi.NewLoader(
				openapi.WithHTTPClient(http.DefaultClient),
				openapi.WithRequestTimeout(timeout),
			)
			raw, err := loader.Load(cmd.Context(), src)
			if err != nil {
				return err
			}
			seeder := openapi.NewSeeder(openapi.WithLogger(a.logger))

			if list || operationID == "" {
				ops, err := seeder.Operations(cmd.Context(), raw)
				if err != nil {
					return err
				}
				for _, op := range ops {
					fmt.Fprintf(a.out, "%s\t%s %s\t%s\n", op.ID, op.Method, op.Path, op.Summary)
				}
				return nil
			}

			seeded, err := seeder.Seed(cmd.Context(), raw, operationID)
			if err != nil {
				return err
			}
			var encoded []byte
			switch to {
			case "json":
				encoded, err = schema.Export(seeded)
			case "yaml", "yml":
				encoded, err = schema.ExportYAML(seeded)
			default:
				return fmt.Errorf("unsupported format %q (want json or yaml)", to)
			}
			if err != nil {
				return err
			}
			_, err = a.out.Write(append(encoded, '\n'))
			return err
		},
	}
	cmd.Flags().StringVar(&operationID, "operation", "", "Operation id to seed from (lists operations when empty)")
	cmd.Flags().StringVar(&to, "to", "json", "Output format: json or yaml")
	cmd.Flags().BoolVar(&list, "list", false, "List operations instead of seeding")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Timeout for remote documents")
	return cmd
}

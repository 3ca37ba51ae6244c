package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newConvertCmd(a *app) *cobra.Command {
	var to, output string
	cmd := &cobra.Command{
		Use:   "convert <schema>",
		Short: "Re-encodes a schema as JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.loadBuilder(args[0])
			if err != nil {
				return err
			}
			var encoded []byte
			switch to {
			case "json":
				encoded, err = b.ExportSchema()
			case "yaml", "yml":
				encoded, err = b.ExportSchemaYAML()
			default:
				return fmt.Errorf("unsupported format %q (want json or yaml)", to)
			}
			if err != nil {
				return err
			}
			if output != "" {
				if err := os.WriteFile(output, encoded, 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				a.logger.Info("schema written", "path", output, "format", to)
				return nil
			}
			_, err = a.out.Write(append(encoded, '\n'))
			return err
		},
	}
	cmd.Flags().StringVar(&to, "to", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout if empty)")
	return cmd
}

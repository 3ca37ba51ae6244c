package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/schema"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <schema>",
		Short: "Reports structural problems of a schema document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read schema: %w", err)
			}
			result, err := schema.Decode(raw)
			if err != nil {
				return err
			}
			if result.Valid() {
				fmt.Fprintf(a.out, "%s: ok (%d fields)\n", args[0], len(result.Schema.Leaves()))
				return nil
			}
			for _, problem := range result.Problems {
				fmt.Fprintf(a.out, "%s: %s\n", args[0], problem)
			}
			a.logger.Debug("schema check failed", "path", args[0], "problems", len(result.Problems))
			return errReported
		},
	}
}

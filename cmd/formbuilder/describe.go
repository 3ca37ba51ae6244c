package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/report"
)

func newDescribeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <schema>",
		Short: "Prints a readable outline of a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.loadBuilder(args[0])
			if err != nil {
				return err
			}
			outline, err := report.Outline(b.Schema())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(a.out, outline)
			return err
		},
	}
}

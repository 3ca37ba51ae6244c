package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEvaluateCmd(a *app) *cobra.Command {
	var fieldID string
	cmd := &cobra.Command{
		Use:   "evaluate <schema> <data>",
		Short: "Prints the rule driven state of every field for the given data",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.loadBuilder(args[0])
			if err != nil {
				return err
			}
			data, err := readFormData(args[1])
			if err != nil {
				return err
			}
			b.SetFormData(data)

			if fieldID == "" {
				return a.printJSON(b.EvaluateAll())
			}
			if _, ok := b.Field(fieldID); !ok {
				return fmt.Errorf("unknown field %q", fieldID)
			}
			return a.printJSON(b.EvaluateField(fieldID))
		},
	}
	cmd.Flags().StringVar(&fieldID, "field", "", "Only evaluate the dependents of this field")
	return cmd
}

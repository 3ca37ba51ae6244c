package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/validation"
)

func newValidateCmd(a *app) *cobra.Command {
	var skipHidden bool
	cmd := &cobra.Command{
		Use:   "validate <schema> <data>",
		Short: "Validates form data against a schema",
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

			var opts []validation.CheckOption
			if skipHidden {
				states := b.EvaluateAll()
				opts = append(opts, validation.SkipHidden(states), validation.EnforceRequired(states))
			}
			result := b.ValidateForm(data, opts...)
			if err := a.printJSON(result); err != nil {
				return err
			}
			if !result.IsValid {
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipHidden, "skip-hidden", false, "Apply rule state: skip hidden fields and enforce rule driven required flags")
	return cmd
}

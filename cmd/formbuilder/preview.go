package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/preview"
)

func newPreviewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <schema>",
		Short: "Fills in a schema interactively and prints the submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.loadBuilder(args[0])
			if err != nil {
				return err
			}
			driver := a.driver
			if driver == nil {
				driver = preview.NewSurveyDriver(a.errOut)
			}
			session, err := preview.New(b, preview.WithPromptDriver(driver), preview.WithLogger(a.logger))
			if err != nil {
				return err
			}
			submission, err := session.Run(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.printJSON(submission); err != nil {
				return err
			}
			if !submission.Valid {
				return errReported
			}
			return nil
		},
	}
}

// Command formbuilder checks, converts, describes and exercises form schemas
// from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/config"
	"github.com/goliatone/go-formbuilder/pkg/preview"
)

func main() {
	if err := execRootCmd(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// app carries the state shared by every command.
type app struct {
	configPath string
	logLevel   string

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	cfg    config.Config
	logger *slog.Logger
	driver preview.PromptDriver
}

func execRootCmd(args []string, in io.Reader, out, errOut io.Writer) error {
	a := &app{in: in, out: out, errOut: errOut}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(a)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintf(errOut, "Error: %v\n", err)
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "formbuilder",
		Short:         "Inspect, convert and exercise form schemas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a YAML or JSON configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config file")

	root.AddCommand(
		newCheckCmd(a),
		newConvertCmd(a),
		newDescribeCmd(a),
		newEvaluateCmd(a),
		newValidateCmd(a),
		newSeedCmd(a),
		newPreviewCmd(a),
	)
	return root
}

func (a *app) setup() error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.LoadFile(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))
	return nil
}

func (a *app) newBuilder() *builder.Builder {
	return builder.New(a.cfg.BuilderOptions(a.logger)...)
}

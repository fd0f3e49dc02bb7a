package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-brandmanual/internal/bootstrap"
	"github.com/goliatone/go-brandmanual/internal/config"
	"github.com/goliatone/go-brandmanual/internal/logger"
	"github.com/goliatone/go-brandmanual/pkg/prompt"
	"github.com/goliatone/go-brandmanual/pkg/sink"
)

// cli carries what every command shares. Tests swap the driver, opener and
// logger.
type cli struct {
	cfgFile string
	stdout  io.Writer
	stderr  io.Writer
	driver  prompt.Driver
	opener  sink.Opener
	logger  logger.Logger
	noPDF   bool
}

type action func(ctx context.Context, app *bootstrap.App, args []string) error

// with loads the config, opens the workspace, runs fn and closes everything.
func (c *cli) with(fn action) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cfg, err := config.Load(c.cfgFile)
		if err != nil {
			return err
		}
		app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
			Opener:         c.opener,
			Logger:         c.logger,
			DisablePrinter: c.noPDF,
		})
		if err != nil {
			return err
		}
		runErr := fn(ctx, app, args)
		if err := app.Close(context.WithoutCancel(ctx)); err != nil {
			return errors.Join(runErr, err)
		}
		return runErr
	}
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.stdout, format, args...)
}

func (c *cli) warnf(format string, args ...any) {
	fmt.Fprintf(c.stderr, format, args...)
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "brandmanual",
		Short: "Build, customise and export a hotel brand manual",
		Long: `brandmanual collects a hotel's identity (name, mission, colours, tone of
voice, contacts), lets you pick a visual template and fine tune every
section, then assembles a standalone HTML document ready to preview,
download or print to PDF.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "brandmanual.yaml", "config file path")

	root.AddCommand(
		newGenerateCmd(c),
		newPreviewCmd(c),
		newPrintCmd(c),
		newFillCmd(c),
		newImportCmd(c),
		newExportCmd(c),
		newShareCmd(c),
		newPresetsCmd(c),
		newTemplatesCmd(c),
		newCustomizeCmd(c),
		newValidateCmd(c),
		newClearCmd(c),
		newServeCmd(c),
	)
	return root
}

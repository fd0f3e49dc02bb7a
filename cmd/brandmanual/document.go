package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-brandmanual/internal/bootstrap"
)

func (c *cli) printWarnings(ctx context.Context, app *bootstrap.App) {
	for _, w := range app.Workspace.Compatibility(ctx).Warnings {
		c.warnf("Aviso: %s\n", w)
	}
}

func newGenerateCmd(c *cli) *cobra.Command {
	var toStdout bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Assemble the standalone HTML manual into the output directory",
		Args:  cobra.NoArgs,
		RunE: c.with(func(ctx context.Context, app *bootstrap.App, _ []string) error {
			c.printWarnings(ctx, app)
			if toStdout {
				html, _, err := app.Workspace.RenderHTML(ctx)
				if err != nil {
					return err
				}
				_, err = io.WriteString(c.stdout, html)
				return err
			}
			path, err := app.Workspace.ExportHTML(ctx)
			if err != nil {
				return err
			}
			c.printf("Manual gerado: %s\n", path)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "write the document to stdout instead of the output directory")
	return cmd
}

func newPreviewCmd(c *cli) *cobra.Command {
	var compact bool
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Open a preview of the manual",
		Args:  cobra.NoArgs,
		RunE: c.with(func(ctx context.Context, app *bootstrap.App, _ []string) error {
			c.printWarnings(ctx, app)
			if err := app.Workspace.Preview(ctx, compact); err != nil {
				return err
			}
			c.printf("Pré-visualização aberta a partir de %s\n", app.Sink.Root())
			return nil
		}),
	}
	cmd.Flags().BoolVar(&compact, "compact", false, "preview at phone width")
	return cmd
}

func newPrintCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "print",
		Short: "Render the print version, as PDF when Chrome is available",
		Args:  cobra.NoArgs,
		RunE: c.with(func(ctx context.Context, app *bootstrap.App, _ []string) error {
			path, err := app.Workspace.ExportPDF(ctx)
			if err != nil {
				return err
			}
			if path == "" {
				c.printf("Documento aberto para impressão\n")
				return nil
			}
			c.printf("PDF gerado: %s\n", path)
			return nil
		}),
	}
}

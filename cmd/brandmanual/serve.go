package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-brandmanual/internal/bootstrap"
	"github.com/goliatone/go-brandmanual/internal/server"
)

func newServeCmd(c *cli) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the manual API, preview and downloads over HTTP",
		Args:  cobra.NoArgs,
		RunE: c.with(func(ctx context.Context, app *bootstrap.App, _ []string) error {
			cfg := app.Config
			if port > 0 {
				cfg.Server.Port = port
			}
			srv, err := server.New(ctx, server.Config{
				Addr:     cfg.Addr(),
				AllowAll: cfg.Server.AllowAll,
				Timeout:  cfg.Server.Timeout,
			}, app.Workspace,
				server.WithLogger(app.Logger),
				server.WithMetrics(app.Metrics),
			)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}),
	}
	cmd.Flags().IntVar(&port, "port", 0, "override the configured port")
	return cmd
}

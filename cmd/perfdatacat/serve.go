// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/elastic/perfdatacat/internal/api"
	"github.com/elastic/perfdatacat/internal/config"
	"github.com/elastic/perfdatacat/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve perfdata, cluster status and metrics over HTTP",
	Long: `Start the HTTP API.

Routes:
  GET /api/v1/perfdata?host=&service=&checkcommand=&duration=&hostcheck=&include=&exclude=
  GET /healthz
  GET /readyz
  GET /metrics`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		shutdownTracing, err := telemetry.SetupTracing(ctx, telemetry.TracingConfig{
			Endpoint:    a.cfg.OTLP.Endpoint,
			Insecure:    a.cfg.OTLP.Insecure,
			ServiceName: "perfdatacat",
			Version:     version,
		})
		if err != nil {
			return err
		}

		srv := api.New(a.cfg.Server.Listen, api.Deps{
			Logger:    a.logger,
			Fetcher:   a.fetcher,
			Cluster:   a.client,
			Gatherer:  a.registry,
			Version:   version,
			StartTime: time.Now(),
		})

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		select {
		case err := <-errCh:
			_ = shutdownTracing(context.Background())
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			a.logger.Warn("HTTP shutdown", zap.Error(err))
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			a.logger.Warn("trace exporter shutdown", zap.Error(err))
		}
		return <-errCh
	},
}

func init() {
	fs := serveCmd.Flags()
	fs.String("listen", config.DefaultListen, "Listen address (env: PERFDATACAT_SERVER_LISTEN)")
	fs.String("otlp", "", "OTLP HTTP endpoint for traces, empty disables export (env: PERFDATACAT_OTLP_ENDPOINT)")
	fs.Bool("otlp-insecure", true, "Send traces over plain HTTP (env: PERFDATACAT_OTLP_INSECURE)")

	rootCmd.AddCommand(serveCmd)
}

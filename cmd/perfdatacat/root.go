// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/elastic/perfdatacat/internal/config"
	"github.com/elastic/perfdatacat/internal/es"
	"github.com/elastic/perfdatacat/internal/logger"
	"github.com/elastic/perfdatacat/internal/perfdata"
	"github.com/elastic/perfdatacat/internal/telemetry"
)

// annotationNoConfig marks commands (and their children) that run without
// loading the effective configuration.
const annotationNoConfig = "perfdatacat/no-config"

var rootCmd = &cobra.Command{
	Use:   "perfdatacat",
	Short: "Read Icinga performance data back out of Elasticsearch",
	Long: `perfdatacat queries the check results Icinga 2 wrote to Elasticsearch and
returns them as per-metric time series, from the command line or over HTTP.

Settings come from flags, PERFDATACAT_* environment variables and the active
profile (see 'perfdatacat config'), in that order.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if skipConfig(cmd) {
			return nil
		}
		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	// Global flags (Viper precedence: flags > env > profile > defaults)
	pf := rootCmd.PersistentFlags()
	pf.StringSlice("es-url", []string{config.DefaultESURL}, "Elasticsearch URLs, tried in order (env: PERFDATACAT_ES_URLS)")
	pf.String("username", "", "Basic auth user (env: PERFDATACAT_ES_USERNAME)")
	pf.String("password", "", "Basic auth password (env: PERFDATACAT_ES_PASSWORD)")
	pf.String("timeout", config.DefaultTimeout.String(), "Per-request timeout, a Go duration or seconds (env: PERFDATACAT_ES_TIMEOUT)")
	pf.Bool("tls-insecure", false, "Skip TLS certificate verification (env: PERFDATACAT_ES_TLS_INSECURE)")
	pf.String("writer", config.DefaultWriter, "Document layout: classic or projection (env: PERFDATACAT_ES_WRITER)")
	pf.String("index", "", "Index override for the classic layout (env: PERFDATACAT_ES_INDEX)")
	pf.Int("retries", config.DefaultRetries, "Attempts per request across nodes (env: PERFDATACAT_ES_RETRIES)")
	pf.String("log-level", config.DefaultLogLevel, "debug, info, warn or error (env: PERFDATACAT_LOG_LEVEL)")
	pf.Bool("log-pretty", false, "Human-readable console logs (env: PERFDATACAT_LOG_PRETTY)")
	pf.String("profile", "", "Profile to use instead of the current one (env: PERFDATACAT_PROFILE)")
}

func skipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationNoConfig] == "true" {
			return true
		}
	}
	return false
}

// app is the wired component graph shared by fetch, status and serve.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *telemetry.Collectors
	client   *es.Client
	fetcher  *perfdata.Fetcher
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, ok := config.FromContext(cmd.Context())
	if !ok {
		return nil, fmt.Errorf("configuration not loaded")
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		return nil, err
	}
	if cfg.Profile != "" {
		log.Debug("using profile", zap.String("profile", cfg.Profile))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewCollectors(reg)

	client, err := es.New(es.Options{
		URLs:        cfg.ES.URLs,
		Username:    cfg.ES.Username,
		Password:    cfg.ES.Password,
		Timeout:     cfg.ES.Timeout,
		TLSInsecure: cfg.ES.TLSInsecure,
		Retries:     cfg.ES.Retries,
	}, log, metrics)
	if err != nil {
		return nil, err
	}

	builder, err := perfdata.NewQueryBuilder(perfdata.WriterMode(cfg.ES.Writer), cfg.ES.Index)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   log,
		registry: reg,
		metrics:  metrics,
		client:   client,
		fetcher: perfdata.NewFetcher(client, builder,
			perfdata.WithLogger(log),
			perfdata.WithCollectors(metrics),
			perfdata.WithTracer(telemetry.Tracer()),
		),
	}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

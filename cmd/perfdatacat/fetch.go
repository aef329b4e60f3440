// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/elastic/perfdatacat/internal/perfdata"
)

// fetchOptions mirrors the fetch flags.
type fetchOptions struct {
	host         string
	service      string
	checkCommand string
	duration     string
	hostCheck    bool
	include      []string
	exclude      []string
	compact      bool
}

var fetchOpts fetchOptions

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the performance data of one host or service",
	Long: `Fetch every perfdata document of a check within the lookback window and print
the assembled series as JSON.

Examples:
  perfdatacat fetch --host web01 --service ping --checkcommand ping4 --duration PT6H
  perfdatacat fetch --host web01 --checkcommand hostalive --hostcheck
  perfdatacat fetch --host db01 --service disk --checkcommand disk --include '/var*' --exclude '*inodes*'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		req, err := fetchOpts.request(time.Now(), a.logger)
		if err != nil {
			return err
		}

		result := a.fetcher.Fetch(cmd.Context(), req)
		if err := writeResult(cmd.OutOrStdout(), result, fetchOpts.compact); err != nil {
			return err
		}
		if result.HasErrors() {
			return fmt.Errorf("fetch finished with %d error(s): %s", len(result.Errors), result.Errors[0].Message)
		}
		return nil
	},
}

func init() {
	fs := fetchCmd.Flags()
	fs.StringVar(&fetchOpts.host, "host", "", "Host name (required)")
	fs.StringVar(&fetchOpts.service, "service", "", "Service name")
	fs.StringVar(&fetchOpts.checkCommand, "checkcommand", "", "Check command that produced the data")
	fs.StringVar(&fetchOpts.duration, "duration", "PT12H", "ISO 8601 lookback, e.g. PT1H, P7D, P1M")
	fs.BoolVar(&fetchOpts.hostCheck, "hostcheck", false, "Query the host check instead of a service")
	fs.StringSliceVar(&fetchOpts.include, "include", nil, "Metric label globs to keep")
	fs.StringSliceVar(&fetchOpts.exclude, "exclude", nil, "Metric label globs to drop")
	fs.BoolVar(&fetchOpts.compact, "compact", false, "Print JSON on a single line")

	rootCmd.AddCommand(fetchCmd)
}

// request turns the flags into a perfdata.Request. A bad duration is logged
// and replaced by the default lookback.
func (o fetchOptions) request(now time.Time, logger *zap.Logger) (perfdata.Request, error) {
	host := strings.TrimSpace(o.host)
	if host == "" {
		return perfdata.Request{}, fmt.Errorf("--host is required")
	}

	from, err := perfdata.LowerBound(now, o.duration)
	if err != nil {
		logger.Warn("using default lookback", zap.String("duration", o.duration), zap.Error(err))
	}

	return perfdata.Request{
		Host:         host,
		Service:      strings.TrimSpace(o.service),
		CheckCommand: strings.TrimSpace(o.checkCommand),
		From:         from,
		IsHostCheck:  o.hostCheck,
		Include:      o.include,
		Exclude:      o.exclude,
	}, nil
}

func writeResult(w io.Writer, result *perfdata.FetchResult, compact bool) error {
	enc := json.NewEncoder(w)
	if !compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package api serves fetch results, cluster status and metrics over HTTP.
package api

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/elastic/perfdatacat/internal/es"
	"github.com/elastic/perfdatacat/internal/perfdata"
)

// Fetcher runs one paginated perfdata fetch.
type Fetcher interface {
	Fetch(ctx context.Context, req perfdata.Request) *perfdata.FetchResult
}

// StatusChecker reports cluster reachability.
type StatusChecker interface {
	Status(ctx context.Context) (*es.ClusterStatus, error)
}

// Deps is everything the handlers need.
type Deps struct {
	Logger   *zap.Logger
	Fetcher  Fetcher
	Cluster  StatusChecker
	Gatherer prometheus.Gatherer

	Version   string
	StartTime time.Time
	Now       func() time.Time // defaults to time.Now
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

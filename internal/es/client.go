// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/elastic/perfdatacat/internal/es/errfmt"
	"github.com/elastic/perfdatacat/internal/fault"
	"github.com/elastic/perfdatacat/internal/perfdata"
	"github.com/elastic/perfdatacat/internal/telemetry"
	"github.com/elastic/perfdatacat/internal/transport"
)

// DefaultTimeout bounds a single HTTP exchange when Options.Timeout is unset.
const DefaultTimeout = 10 * time.Second

// Options configures a Client.
type Options struct {
	URLs        []string
	Username    string
	Password    string
	Timeout     time.Duration
	TLSInsecure bool
	Retries     int
}

// New creates a Client that sends every request through a failover
// transport over opts.URLs.
func New(opts Options, logger *zap.Logger, metrics *telemetry.Collectors) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout < 0 {
		return nil, fault.Errorf(fault.Configuration, "create client", "timeout must not be negative, got %s", opts.Timeout)
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	base := http.DefaultTransport.(*http.Transport).Clone()
	if opts.TLSInsecure {
		base.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for self-signed clusters
	}
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(base),
	}

	pool := transport.NewHostPool(httpClient, logger, metrics)
	if err := pool.Configure(opts.URLs); err != nil {
		return nil, err
	}

	tr, err := transport.New(httpClient, pool,
		transport.WithBasicAuth(opts.Username, opts.Password),
		transport.WithRetries(opts.Retries),
		transport.WithLogger(logger),
		transport.WithCollectors(metrics),
	)
	if err != nil {
		return nil, err
	}

	return NewWithTransport(tr, logger), nil
}

// NewWithTransport creates a Client over an existing transport.
func NewWithTransport(tr *transport.Transport, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		transport: tr,
		pool:      tr.Pool(),
		logger:    logger.Named("es"),
	}
}

// Hosts returns the reachability of every configured node.
func (c *Client) Hosts() []transport.HostStatus {
	return c.pool.Snapshot()
}

// SearchRaw executes a search query and returns the raw response.
func (c *Client) SearchRaw(ctx context.Context, index string, body []byte) (*esapi.Response, error) {
	req := esapi.SearchRequest{
		Index: []string{index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, c.transport)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	return res, nil
}

// SearchForPerfdata implements perfdata.Executor interface
func (c *Client) SearchForPerfdata(ctx context.Context, index string, body []byte) (*perfdata.SearchResponse, error) {
	res, err := c.SearchRaw(ctx, index, body)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("search", zap.String("index", index), zap.Int("status", res.StatusCode))
	return &perfdata.SearchResponse{
		Body:       res.Body,
		StatusCode: res.StatusCode,
		Status:     res.Status(),
		IsError:    res.IsError(),
	}, nil
}

// Status asks the cluster for its banner (GET /). The host snapshot is always
// filled in, even when the request fails.
func (c *Client) Status(ctx context.Context) (*ClusterStatus, error) {
	status := &ClusterStatus{}
	defer func() { status.Hosts = c.pool.Snapshot() }()

	res, err := esapi.InfoRequest{}.Do(ctx, c.transport)
	if err != nil {
		if fault.KindOf(err) == fault.Unknown {
			err = fault.New(fault.Network, "info", err)
		}
		status.Error = "Connection error: " + err.Error()
		return status, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		err = fault.New(fault.Network, "info", fmt.Errorf("failed to read response: %w", err))
		status.Error = "Request error: " + err.Error()
		return status, err
	}

	if res.IsError() {
		err = fault.New(fault.HTTP, "info", errfmt.FormatStatusError("info", res.Status(), body))
		status.Error = fmt.Sprintf("HTTP error: %d - %s", res.StatusCode, http.StatusText(res.StatusCode))
		return status, err
	}

	var banner struct {
		Name        string `json:"name"`
		ClusterName string `json:"cluster_name"`
		ClusterUUID string `json:"cluster_uuid"`
		Version     struct {
			Number       string `json:"number"`
			Distribution string `json:"distribution"`
		} `json:"version"`
		Tagline string `json:"tagline"`
	}
	if err := json.Unmarshal(body, &banner); err != nil {
		err = fault.New(fault.Decode, "info", fmt.Errorf("failed to decode cluster info: %w", err))
		status.Error = "General error: " + err.Error()
		return status, err
	}

	status.Reachable = true
	status.NodeName = banner.Name
	status.ClusterName = banner.ClusterName
	status.ClusterUUID = banner.ClusterUUID
	status.Version = banner.Version.Number
	status.Distribution = banner.Version.Distribution
	status.Tagline = banner.Tagline
	return status, nil
}

// Ping checks if Elasticsearch is reachable
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Status(ctx)
	return err
}

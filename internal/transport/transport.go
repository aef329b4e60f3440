// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package transport sends HTTP requests to an ordered pool of cluster nodes,
// failing over to the next node on network errors.
package transport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/elastic/elastic-transport-go/v8/elastictransport"
	"go.uber.org/zap"

	"github.com/elastic/perfdatacat/internal/fault"
	"github.com/elastic/perfdatacat/internal/telemetry"
)

// ErrNoHostReachable is returned when no configured node answers.
var ErrNoHostReachable = errors.New("no host reachable")

// DefaultRetries is the number of attempts made for a single request.
const DefaultRetries = 1

// Transport satisfies elastictransport.Interface so it can drive esapi
// requests directly.
var _ elastictransport.Interface = (*Transport)(nil)

// Transport rewrites each request to the current node in the pool and sends
// it. Only network errors cause failover; any HTTP response, whatever its
// status, is returned to the caller.
type Transport struct {
	client  Doer
	pool    *HostPool
	headers http.Header
	user    *url.Userinfo
	retries int
	logger  *zap.Logger
	metrics *telemetry.Collectors
}

// Option configures a Transport.
type Option func(*Transport)

// WithBasicAuth attaches credentials to requests that carry none.
func WithBasicAuth(username, password string) Option {
	return func(t *Transport) {
		if username == "" {
			t.user = nil
			return
		}
		t.user = url.UserPassword(username, password)
	}
}

// WithHeader sets a default header. Headers on the request take precedence.
func WithHeader(name, value string) Option {
	return func(t *Transport) {
		t.headers.Set(name, value)
	}
}

// WithRetries sets the attempt budget per request.
func WithRetries(n int) Option {
	return func(t *Transport) {
		t.retries = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithCollectors sets the Prometheus collectors.
func WithCollectors(c *telemetry.Collectors) Option {
	return func(t *Transport) {
		t.metrics = c
	}
}

// New creates a Transport over pool. client sends the actual requests and is
// usually the same Doer the pool probes with.
func New(client Doer, pool *HostPool, opts ...Option) (*Transport, error) {
	t := &Transport{
		client:  client,
		pool:    pool,
		headers: http.Header{},
		retries: DefaultRetries,
		logger:  zap.NewNop(),
	}
	t.headers.Set("Accept", "application/json")
	t.headers.Set("Content-Type", "application/json")

	for _, opt := range opts {
		opt(t)
	}

	if client == nil || pool == nil {
		return nil, fault.Errorf(fault.Configuration, "create transport", "client and host pool are required")
	}
	if t.retries < 0 {
		return nil, fault.Errorf(fault.Configuration, "create transport", "retries must be >= 0, got %d", t.retries)
	}
	t.logger = t.logger.Named("transport")
	return t, nil
}

// Pool returns the host pool the transport sends to.
func (t *Transport) Pool() *HostPool {
	return t.pool
}

// Perform sends req to the first reachable node. A network error marks that
// node unreachable and the request is replayed on the next one, up to the
// retry budget. Cancellation of req's context is returned as is.
func (t *Transport) Perform(req *http.Request) (*http.Response, error) {
	if t.retries == 0 {
		return nil, fault.New(fault.Network, "perform request", ErrNoHostReachable)
	}
	ctx := req.Context()

	body, err := drainBody(req)
	if err != nil {
		return nil, fmt.Errorf("failed to buffer request body: %w", err)
	}

	probe, err := http.NewRequestWithContext(ctx, http.MethodHead, "/", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build probe request: %w", err)
	}
	t.decorate(probe)

	idx, err := t.pool.Next(ctx, probe)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= t.retries; attempt++ {
		host := t.pool.URL(idx)
		out := t.prepare(req, host, body)

		res, err := t.client.Do(out)
		if err == nil {
			t.pool.MarkReached(idx)
			t.metrics.ObserveRequest(hostLabel(host), "ok")
			return res, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		t.metrics.ObserveRequest(hostLabel(host), "network_error")
		t.logger.Warn("request failed, marking host unreachable",
			zap.String("host", hostLabel(host)),
			zap.Int("attempt", attempt),
			zap.Int("retries", t.retries),
			zap.Error(err),
		)
		t.pool.MarkUnreachable(idx)

		if attempt == t.retries {
			break
		}
		idx, err = t.pool.Next(ctx, probe)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fault.New(fault.Network, "perform request",
				fmt.Errorf("%w (last error: %v)", ErrNoHostReachable, lastErr))
		}
		t.metrics.ObserveFailover()
	}

	return nil, fault.New(fault.Network, "perform request",
		fmt.Errorf("%w after %d attempt(s) (last error: %v)", ErrNoHostReachable, t.retries, lastErr))
}

// prepare clones req for host with a fresh copy of the buffered body.
func (t *Transport) prepare(req *http.Request, host *url.URL, body []byte) *http.Request {
	out := req.Clone(req.Context())
	retarget(out, host)
	t.decorate(out)

	if body != nil {
		out.Body = io.NopCloser(bytes.NewReader(body))
		out.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
		out.ContentLength = int64(len(body))
	}
	return out
}

// decorate applies default headers and credentials without overriding what
// the caller already set.
func (t *Transport) decorate(r *http.Request) {
	if r.Header == nil {
		r.Header = http.Header{}
	}
	for name, values := range t.headers {
		if r.Header.Get(name) == "" {
			r.Header[name] = append([]string(nil), values...)
		}
	}
	if t.user != nil && r.URL.User == nil && r.Header.Get("Authorization") == "" {
		r.URL.User = t.user
	}
}

func drainBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	defer req.Body.Close()
	return io.ReadAll(req.Body)
}

func hostLabel(u *url.URL) string {
	return (&url.URL{Scheme: u.Scheme, Host: u.Host}).String()
}

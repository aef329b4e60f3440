// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/elastic/perfdatacat/internal/fault"
	"github.com/elastic/perfdatacat/internal/telemetry"
)

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// HostPool is the ordered list of cluster nodes. Configured order is failover
// priority. Hosts are addressed by index; the mutex guards reachability flags
// and serializes failover scans.
type HostPool struct {
	mu      sync.Mutex
	hosts   []Host
	client  Doer
	logger  *zap.Logger
	metrics *telemetry.Collectors
	now     func() time.Time
}

// NewHostPool creates an empty pool that probes hosts through client.
// Call Configure before use.
func NewHostPool(client Doer, logger *zap.Logger, metrics *telemetry.Collectors) *HostPool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HostPool{
		client:  client,
		logger:  logger.Named("hostpool"),
		metrics: metrics,
		now:     time.Now,
	}
}

// Configure replaces all hosts. Every host starts reachable. An empty list or
// an invalid URL is a configuration error and leaves the pool unchanged.
func (p *HostPool) Configure(urls []string) error {
	hosts := make([]Host, 0, len(urls))
	for _, raw := range urls {
		h, err := parseHost(raw)
		if err != nil {
			return fault.New(fault.Configuration, "configure hosts", err)
		}
		hosts = append(hosts, h)
	}
	if len(hosts) == 0 {
		return fault.Errorf(fault.Configuration, "configure hosts", "at least one host URL is required")
	}

	p.mu.Lock()
	p.hosts = hosts
	p.mu.Unlock()

	for _, h := range hosts {
		p.metrics.SetReachable(h.String(), true)
	}
	return nil
}

// Len returns the number of configured hosts.
func (p *HostPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.hosts)
}

// Next returns the index of the first reachable host. When every host is
// flagged unreachable it probes them in order with probe and returns the
// first one answering 200. Each host is probed at most once per call.
func (p *HostPool) Next(ctx context.Context, probe *http.Request) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.hosts) == 0 {
		return -1, fault.Errorf(fault.Configuration, "select host", "host pool is empty")
	}

	for i := range p.hosts {
		if p.hosts[i].reachable {
			return i, nil
		}
	}

	for i := range p.hosts {
		if ctx.Err() != nil {
			return -1, ctx.Err()
		}
		if p.ping(ctx, i, probe) {
			p.hosts[i].reachable = true
			p.hosts[i].lastReachedAt = p.now()
			p.metrics.SetReachable(p.hosts[i].String(), true)
			p.logger.Info("host reachable again", zap.String("host", p.hosts[i].String()))
			return i, nil
		}
	}

	return -1, fault.New(fault.Network, "select host", ErrNoHostReachable)
}

// ping sends probe to host i. Caller holds p.mu.
func (p *HostPool) ping(ctx context.Context, i int, probe *http.Request) bool {
	host := p.hosts[i]

	req := probe.Clone(ctx)
	req.URL.Path = "/"
	req.URL.RawQuery = ""
	retarget(req, host.url)

	res, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("probe failed", zap.String("host", host.String()), zap.Error(err))
		p.metrics.ObserveProbe(host.String(), false)
		return false
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	ok := res.StatusCode == http.StatusOK
	p.metrics.ObserveProbe(host.String(), ok)
	if !ok {
		p.logger.Debug("probe rejected", zap.String("host", host.String()), zap.Int("status", res.StatusCode))
	}
	return ok
}

// URL returns a copy of host i's endpoint.
func (p *HostPool) URL(i int) *url.URL {
	p.mu.Lock()
	defer p.mu.Unlock()
	u := *p.hosts[i].url
	return &u
}

// MarkUnreachable flags host i as dead until a probe revives it.
func (p *HostPool) MarkUnreachable(i int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hosts[i].reachable = false
	p.metrics.SetReachable(p.hosts[i].String(), false)
}

// MarkReached records a successful exchange with host i.
func (p *HostPool) MarkReached(i int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hosts[i].reachable = true
	p.hosts[i].lastReachedAt = p.now()
}

// Snapshot returns the current state of every host in configured order.
func (p *HostPool) Snapshot() []HostStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]HostStatus, 0, len(p.hosts))
	for _, h := range p.hosts {
		out = append(out, h.status())
	}
	return out
}

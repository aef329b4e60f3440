// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package telemetry holds the Prometheus collectors and the OpenTelemetry
// tracer used by the transport and the fetch pipeline.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collectors groups every Prometheus metric perfdatacat exports.
// All methods are safe to call on a nil *Collectors.
type Collectors struct {
	Requests       *prometheus.CounterVec
	Failovers      prometheus.Counter
	Probes         *prometheus.CounterVec
	HostReachable  *prometheus.GaugeVec
	FetchPages     prometheus.Counter
	FetchDocuments prometheus.Counter
	FetchFaults    *prometheus.CounterVec
	FetchDuration  prometheus.Histogram
}

// NewCollectors creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which is what tests want.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "perfdatacat_transport_requests_total",
				Help: "Requests sent to cluster nodes by host and outcome (ok, network_error).",
			},
			[]string{"host", "outcome"},
		),
		Failovers: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "perfdatacat_transport_failovers_total",
				Help: "Times a request was moved to another node after a network failure.",
			},
		),
		Probes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "perfdatacat_transport_probes_total",
				Help: "Liveness probes sent to unreachable nodes by host and result.",
			},
			[]string{"host", "result"},
		),
		HostReachable: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "perfdatacat_host_reachable",
				Help: "Reachability flag per configured node (1 reachable, 0 not).",
			},
			[]string{"host"},
		),
		FetchPages: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "perfdatacat_fetch_pages_total",
				Help: "Search pages requested by the metrics fetcher.",
			},
		),
		FetchDocuments: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "perfdatacat_fetch_documents_total",
				Help: "Documents consumed by the metrics fetcher.",
			},
		),
		FetchFaults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "perfdatacat_fetch_faults_total",
				Help: "Faults recorded in fetch results by kind.",
			},
			[]string{"kind"},
		),
		FetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "perfdatacat_fetch_duration_seconds",
				Help:    "Wall time of a complete paginated fetch.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			c.Requests,
			c.Failovers,
			c.Probes,
			c.HostReachable,
			c.FetchPages,
			c.FetchDocuments,
			c.FetchFaults,
			c.FetchDuration,
		)
	}
	return c
}

// ObserveRequest counts one request attempt against host.
func (c *Collectors) ObserveRequest(host, outcome string) {
	if c == nil {
		return
	}
	c.Requests.WithLabelValues(host, outcome).Inc()
}

// ObserveFailover counts one switch to another node.
func (c *Collectors) ObserveFailover() {
	if c == nil {
		return
	}
	c.Failovers.Inc()
}

// ObserveProbe counts one liveness probe.
func (c *Collectors) ObserveProbe(host string, ok bool) {
	if c == nil {
		return
	}
	result := "fail"
	if ok {
		result = "ok"
	}
	c.Probes.WithLabelValues(host, result).Inc()
}

// SetReachable mirrors a host reachability flag.
func (c *Collectors) SetReachable(host string, reachable bool) {
	if c == nil {
		return
	}
	v := 0.0
	if reachable {
		v = 1
	}
	c.HostReachable.WithLabelValues(host).Set(v)
}

// ObservePage counts one fetched page and its documents.
func (c *Collectors) ObservePage(docs int) {
	if c == nil {
		return
	}
	c.FetchPages.Inc()
	c.FetchDocuments.Add(float64(docs))
}

// ObserveFault counts one fault recorded in a fetch result.
func (c *Collectors) ObserveFault(kind string) {
	if c == nil {
		return
	}
	c.FetchFaults.WithLabelValues(kind).Inc()
}

// ObserveFetch records the duration of a finished fetch in seconds.
func (c *Collectors) ObserveFetch(seconds float64) {
	if c == nil {
		return
	}
	c.FetchDuration.Observe(seconds)
}

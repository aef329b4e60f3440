// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package es talks to Elasticsearch through the esapi request types, riding
// on the failover transport.
package es

import (
	"go.uber.org/zap"

	"github.com/elastic/perfdatacat/internal/perfdata"
	"github.com/elastic/perfdatacat/internal/transport"
)

var _ perfdata.Executor = (*Client)(nil)

// Client wraps the failover transport with perfdatacat-specific functionality
type Client struct {
	transport *transport.Transport
	pool      *transport.HostPool
	logger    *zap.Logger
}

// ClusterStatus is the answer of a status check.
type ClusterStatus struct {
	Reachable    bool                   `json:"reachable"`
	NodeName     string                 `json:"node_name,omitempty"`
	ClusterName  string                 `json:"cluster_name,omitempty"`
	ClusterUUID  string                 `json:"cluster_uuid,omitempty"`
	Version      string                 `json:"version,omitempty"`
	Distribution string                 `json:"distribution,omitempty"`
	Tagline      string                 `json:"tagline,omitempty"`
	Error        string                 `json:"error,omitempty"`
	Hosts        []transport.HostStatus `json:"hosts"`
}

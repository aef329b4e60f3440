// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Host is a single cluster node.
type Host struct {
	url           *url.URL
	reachable     bool
	lastReachedAt time.Time
}

// HostStatus is a read-only view of a Host for status reporting.
type HostStatus struct {
	URL           string     `json:"url"`
	Reachable     bool       `json:"reachable"`
	LastReachedAt *time.Time `json:"last_reached_at,omitempty"`
}

// parseHost validates a configured endpoint. Only scheme and authority are
// kept; request paths always come from the outgoing request.
func parseHost(raw string) (Host, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		return Host{}, fmt.Errorf("empty host URL")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Host{}, fmt.Errorf("invalid host URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Host{}, fmt.Errorf("host URL %q must use http or https", raw)
	}
	if u.Host == "" {
		return Host{}, fmt.Errorf("host URL %q has no host", raw)
	}
	return Host{
		url:       &url.URL{Scheme: u.Scheme, Host: u.Host, User: u.User},
		reachable: true,
	}, nil
}

// String returns the endpoint without credentials.
func (h Host) String() string {
	return (&url.URL{Scheme: h.url.Scheme, Host: h.url.Host}).String()
}

func (h Host) status() HostStatus {
	st := HostStatus{URL: h.String(), Reachable: h.reachable}
	if !h.lastReachedAt.IsZero() {
		ts := h.lastReachedAt
		st.LastReachedAt = &ts
	}
	return st
}

// retarget points r at target, keeping r's path and query. Credentials
// embedded in the host URL are used only when r carries none.
func retarget(r *http.Request, target *url.URL) {
	r.URL.Scheme = target.Scheme
	r.URL.Host = target.Host
	r.Host = ""
	if r.URL.User == nil && target.User != nil {
		user := *target.User
		r.URL.User = &user
	}
}

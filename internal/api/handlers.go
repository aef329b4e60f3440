// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/elastic/perfdatacat/internal/perfdata"
)

var errMissingHost = errors.New("query parameter host is required")

type paramError struct {
	name, value string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("invalid value %q for query parameter %s", e.value, e.name)
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthzResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version,omitempty"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Healthz reports that the process is serving.
func Healthz(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			Version:       d.Version,
			UptimeSeconds: d.now().Sub(d.StartTime).Seconds(),
		})
	}
}

// Readyz runs a status check and answers 503 while no node is usable.
func Readyz(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := d.Cluster.Status(r.Context())
		if err != nil {
			d.Logger.Warn("cluster not ready", zap.Error(err))
			if st == nil {
				writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
				return
			}
			writeJSON(w, http.StatusServiceUnavailable, st)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// Perfdata answers a fetch. Fetch problems are reported inside the result
// with status 200; only malformed requests get a 400.
func Perfdata(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parsePerfdataRequest(r, d.now(), d.Logger)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, d.Fetcher.Fetch(r.Context(), req))
	}
}

func parsePerfdataRequest(r *http.Request, now time.Time, logger *zap.Logger) (perfdata.Request, error) {
	q := r.URL.Query()

	req := perfdata.Request{
		Host:         strings.TrimSpace(q.Get("host")),
		Service:      strings.TrimSpace(q.Get("service")),
		CheckCommand: strings.TrimSpace(q.Get("checkcommand")),
		Include:      listParam(q["include"]),
		Exclude:      listParam(q["exclude"]),
	}
	if req.Host == "" {
		return req, errMissingHost
	}

	if raw := q.Get("hostcheck"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return req, &paramError{name: "hostcheck", value: raw}
		}
		req.IsHostCheck = v
	}

	req.From = now.Add(-perfdata.DefaultLookback)
	if raw := q.Get("duration"); raw != "" {
		from, err := perfdata.LowerBound(now, raw)
		if err != nil {
			logger.Warn("using default lookback", zap.String("duration", raw), zap.Error(err))
		}
		req.From = from
	}
	return req, nil
}

// listParam accepts repeated parameters as well as comma-separated values.
func listParam(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package perfdata fetches check performance data from Elasticsearch and
// folds it into per-metric series.
package perfdata

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/elastic/perfdatacat/internal/fault"
)

// Request describes a single perfdata lookup.
type Request struct {
	Host         string
	Service      string
	CheckCommand string
	From         time.Time // inclusive lower bound
	IsHostCheck  bool
	Include      []string // glob patterns; empty keeps everything
	Exclude      []string // glob patterns; empty drops nothing
}

// Hit is one search hit as returned by _search. Numbers are json.Number so
// sort keys can be sent back verbatim.
type Hit struct {
	Source json.RawMessage  `json:"_source,omitempty"`
	Fields map[string][]any `json:"fields,omitempty"`
	Sort   []any            `json:"sort,omitempty"`
}

// Sample is one metric reading inside a document.
type Sample struct {
	Label string
	Unit  string
	Value *float64
	Warn  *float64
	Crit  *float64
}

// Point is every kept sample of one document, stamped with its time in unix
// seconds.
type Point struct {
	Timestamp int64
	Samples   []Sample
	Skipped   []error // labels left out because their data could not be read
}

// Series is one named value sequence aligned with a MetricSet's timestamps.
type Series struct {
	Name   string     `json:"name"`
	Values []*float64 `json:"values"`
}

// MetricSet is the assembled data of one metric label.
type MetricSet struct {
	Label      string   `json:"label"`
	Unit       string   `json:"unit"`
	Timestamps []int64  `json:"timestamps"`
	Series     []Series `json:"series"`
}

// SeriesByName returns the named series, or nil.
func (m MetricSet) SeriesByName(name string) []*float64 {
	for _, s := range m.Series {
		if s.Name == name {
			return s.Values
		}
	}
	return nil
}

// Fault is a non-fatal problem recorded while fetching.
type Fault struct {
	Kind    fault.Kind `json:"kind"`
	Message string     `json:"message"`
}

// FetchResult is what a fetch produces: whatever data could be gathered plus
// the problems met along the way.
type FetchResult struct {
	Data   []MetricSet `json:"data"`
	Errors []Fault     `json:"errors"`
}

// HasErrors reports whether any fault was recorded.
func (r *FetchResult) HasErrors() bool {
	return len(r.Errors) > 0
}

func (r *FetchResult) addFault(err error) {
	r.Errors = append(r.Errors, Fault{Kind: fault.KindOf(err), Message: err.Error()})
}

// SearchResponse is a raw search response body.
type SearchResponse struct {
	Body       io.ReadCloser
	StatusCode int
	Status     string
	IsError    bool
}

// Executor defines the Elasticsearch operations needed for perfdata.
type Executor interface {
	// SearchForPerfdata executes a search against index and returns the raw response
	SearchForPerfdata(ctx context.Context, index string, body []byte) (*SearchResponse, error)
}

// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package perfdata

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/perfdatacat/internal/fault"
)

const (
	// PageSize is the number of hits requested per page.
	PageSize = 2000

	// TimestampField is the range and sort field for both writer modes.
	TimestampField = "@timestamp"

	// boundLayout formats the lower time bound. Elasticsearch reads it as UTC.
	boundLayout = "2006-01-02T15:04:05"
)

// WriterMode selects how perfdata documents were written to Elasticsearch.
type WriterMode string

const (
	// ModeClassic reads documents embedding a perfdata map in _source.
	ModeClassic WriterMode = "classic"
	// ModeProjection reads flattened check_result.perfdata fields.
	ModeProjection WriterMode = "projection"
)

// QueryBuilder builds searches and extracts metrics for one document layout.
type QueryBuilder interface {
	// BuildQuery returns the search body. A nil cursor requests the first page.
	BuildQuery(req Request, cursor any) map[string]any
	// IndexName returns the index or data stream to search.
	IndexName(req Request) string
	// ExtractMetrics reads the samples of one hit whose label passes keep.
	ExtractMetrics(hit Hit, keep func(label string) bool) (Point, error)
}

// NewQueryBuilder returns the builder for mode. index overrides the classic
// index name and is ignored in projection mode.
func NewQueryBuilder(mode WriterMode, index string) (QueryBuilder, error) {
	switch WriterMode(strings.ToLower(string(mode))) {
	case ModeClassic, "":
		return &ClassicQueryBuilder{Index: index}, nil
	case ModeProjection:
		return &ProjectionQueryBuilder{}, nil
	default:
		return nil, fault.Errorf(fault.Configuration, "select query builder",
			"unknown writer mode %q (want %s or %s)", mode, ModeClassic, ModeProjection)
	}
}

// searchBody assembles the parts shared by every builder.
func searchBody(must []any, from time.Time, cursor any) map[string]any {
	body := map[string]any{
		"size": PageSize,
		"sort": []any{
			map[string]any{TimestampField: map[string]any{"order": "asc"}},
		},
		"query": map[string]any{
			"bool": map[string]any{
				"must": must,
				"filter": map[string]any{
					"range": map[string]any{
						TimestampField: map[string]any{
							"gte": from.UTC().Format(boundLayout),
							"lte": "now",
						},
					},
				},
			},
		},
	}
	if cursor != nil {
		body["search_after"] = []any{cursor}
	}
	return body
}

func term(field, value string) map[string]any {
	return map[string]any{"term": map[string]any{field: value}}
}

// number converts a decoded JSON scalar to a float. Anything that is not a
// finite number yields nil.
func number(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case float64:
		f = n
	case int64:
		f = float64(n)
	case int:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// last returns the final element of a fields array, as Elasticsearch returns
// every projected field as a list.
func last(values []any) any {
	if len(values) == 0 {
		return nil
	}
	return values[len(values)-1]
}

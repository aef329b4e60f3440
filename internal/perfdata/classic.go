// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package perfdata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ClassicQueryBuilder reads documents that embed perfdata in _source:
//
//	{"@timestamp": "...", "perfdata": {"rta": {"value": 0.1, "unit": "s", "warn": 1, "crit": 2}}}
type ClassicQueryBuilder struct {
	// Index overrides the per check command index when set.
	Index string
}

// BuildQuery implements QueryBuilder.
func (b *ClassicQueryBuilder) BuildQuery(req Request, cursor any) map[string]any {
	var must []any
	if req.IsHostCheck {
		must = []any{term("host.name", req.Host)}
	} else {
		must = []any{
			map[string]any{"match": map[string]any{"service.name": req.Host + "!" + req.Service}},
		}
	}
	return searchBody(must, req.From, cursor)
}

// IndexName implements QueryBuilder.
func (b *ClassicQueryBuilder) IndexName(req Request) string {
	if b.Index != "" {
		return b.Index
	}
	return "metrics-icinga2." + req.CheckCommand + "-default"
}

type classicMetric struct {
	Value any `json:"value"`
	Unit  any `json:"unit"`
	Warn  any `json:"warn"`
	Crit  any `json:"crit"`
}

// ExtractMetrics implements QueryBuilder. Labels keep their document order. A
// label whose data is not an object is left out and reported in Skipped.
func (b *ClassicQueryBuilder) ExtractMetrics(hit Hit, keep func(string) bool) (Point, error) {
	var doc struct {
		Timestamp string          `json:"@timestamp"`
		Perfdata  json.RawMessage `json:"perfdata"`
	}
	if len(hit.Source) == 0 {
		return Point{}, fmt.Errorf("hit has no _source")
	}
	if err := json.Unmarshal(hit.Source, &doc); err != nil {
		return Point{}, fmt.Errorf("failed to decode _source: %w", err)
	}

	ts, err := parseTimestamp(doc.Timestamp)
	if err != nil {
		return Point{}, err
	}

	p := Point{Timestamp: ts}
	if len(doc.Perfdata) == 0 || bytes.Equal(doc.Perfdata, []byte("null")) {
		return p, nil
	}

	dec := json.NewDecoder(bytes.NewReader(doc.Perfdata))
	dec.UseNumber()
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return Point{}, fmt.Errorf("perfdata is not an object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Point{}, fmt.Errorf("failed to read perfdata label: %w", err)
		}
		label, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return Point{}, fmt.Errorf("failed to read perfdata %q: %w", label, err)
		}
		if label == "" || !keep(label) {
			continue
		}

		var m classicMetric
		md := json.NewDecoder(bytes.NewReader(raw))
		md.UseNumber()
		if err := md.Decode(&m); err != nil {
			p.Skipped = append(p.Skipped, fmt.Errorf("perfdata %q: %w", label, err))
			continue
		}
		unit, _ := m.Unit.(string)
		p.Samples = append(p.Samples, Sample{
			Label: label,
			Unit:  unit,
			Value: number(m.Value),
			Warn:  number(m.Warn),
			Crit:  number(m.Crit),
		})
	}
	return p, nil
}

func parseTimestamp(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("missing @timestamp")
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("invalid @timestamp %q", s)
}

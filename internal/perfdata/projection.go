// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package perfdata

import (
	"fmt"
	"sort"
	"strings"
)

const perfdataPrefix = "check_result.perfdata."

// perfdataSuffixes are the projected leaves of one metric label.
var perfdataSuffixes = []string{".value", ".unit", ".warn", ".crit"}

// ProjectionQueryBuilder reads flattened perfdata through field projection.
// Hits carry fields such as:
//
//	"@timestamp": ["1751293383.713"],
//	"check_result.perfdata./.value": [14774000000],
//	"check_result.perfdata./.unit": ["bytes"]
type ProjectionQueryBuilder struct{}

// BuildQuery implements QueryBuilder.
func (b *ProjectionQueryBuilder) BuildQuery(req Request, cursor any) map[string]any {
	must := []any{term("host.keyword", req.Host)}
	if !req.IsHostCheck {
		must = append(must, term("service.keyword", req.Service))
	}
	must = append(must, term("check_command.keyword", req.CheckCommand))

	body := searchBody(must, req.From, cursor)
	body["_source"] = false
	body["fields"] = []any{
		perfdataPrefix + "*",
		map[string]any{"field": TimestampField, "format": "epoch_second"},
	}
	return body
}

// IndexName implements QueryBuilder.
func (b *ProjectionQueryBuilder) IndexName(req Request) string {
	return "metrics-icinga2." + NormalizeCheckCommand(req.CheckCommand) + "-default"
}

// ExtractMetrics implements QueryBuilder. Labels are returned sorted since
// projected fields carry no meaningful order.
func (b *ProjectionQueryBuilder) ExtractMetrics(hit Hit, keep func(string) bool) (Point, error) {
	ts, err := epochSeconds(last(hit.Fields[TimestampField]))
	if err != nil {
		return Point{}, err
	}

	seen := make(map[string]bool)
	var labels []string
	for key := range hit.Fields {
		label, ok := projectedLabel(key)
		if !ok || seen[label] {
			continue
		}
		seen[label] = true
		if keep(label) {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)

	p := Point{Timestamp: ts, Samples: make([]Sample, 0, len(labels))}
	for _, label := range labels {
		base := perfdataPrefix + label
		unit, _ := last(hit.Fields[base+".unit"]).(string)
		p.Samples = append(p.Samples, Sample{
			Label: label,
			Unit:  unit,
			Value: number(last(hit.Fields[base+".value"])),
			Warn:  number(last(hit.Fields[base+".warn"])),
			Crit:  number(last(hit.Fields[base+".crit"])),
		})
	}
	return p, nil
}

// projectedLabel returns the metric label of a projected perfdata field,
// whichever leaf the field is.
func projectedLabel(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, perfdataPrefix)
	if !ok {
		return "", false
	}
	for _, suffix := range perfdataSuffixes {
		if label, ok := strings.CutSuffix(rest, suffix); ok && label != "" {
			return label, true
		}
	}
	return "", false
}

// epochSeconds reads an epoch_second formatted timestamp, which may carry a
// fractional part.
func epochSeconds(v any) (int64, error) {
	if v == nil {
		return 0, fmt.Errorf("missing @timestamp")
	}
	f := number(v)
	if f == nil {
		return 0, fmt.Errorf("invalid @timestamp %v", v)
	}
	return int64(*f), nil
}

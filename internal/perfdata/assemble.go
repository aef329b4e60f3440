// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package perfdata

// Series names.
const (
	SeriesValue    = "value"
	SeriesWarning  = "warning"
	SeriesCritical = "critical"
)

type labelData struct {
	unit       string
	timestamps []int64
	values     []*float64
	warnings   []*float64
	criticals  []*float64
}

// Accumulator collects samples per label across pages. The four sequences of
// a label always have the same length.
type Accumulator struct {
	order  []string
	labels map[string]*labelData
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{labels: make(map[string]*labelData)}
}

// Add appends every sample of p.
func (a *Accumulator) Add(p Point) {
	for _, s := range p.Samples {
		d, ok := a.labels[s.Label]
		if !ok {
			d = &labelData{}
			a.labels[s.Label] = d
			a.order = append(a.order, s.Label)
		}
		d.timestamps = append(d.timestamps, p.Timestamp)
		d.values = append(d.values, s.Value)
		d.warnings = append(d.warnings, s.Warn)
		d.criticals = append(d.criticals, s.Crit)
		if s.Unit != "" {
			d.unit = s.Unit
		}
	}
}

// Len returns the number of labels seen.
func (a *Accumulator) Len() int {
	return len(a.order)
}

// Assemble folds the accumulated data into metric sets in first-seen label
// order. Warning and critical series are emitted only when they hold at least
// one value.
func (a *Accumulator) Assemble() []MetricSet {
	out := make([]MetricSet, 0, len(a.order))
	for _, label := range a.order {
		d := a.labels[label]
		set := MetricSet{
			Label:      label,
			Unit:       d.unit,
			Timestamps: d.timestamps,
			Series:     []Series{{Name: SeriesValue, Values: d.values}},
		}
		if anyValue(d.warnings) {
			set.Series = append(set.Series, Series{Name: SeriesWarning, Values: d.warnings})
		}
		if anyValue(d.criticals) {
			set.Series = append(set.Series, Series{Name: SeriesCritical, Values: d.criticals})
		}
		out = append(out, set)
	}
	return out
}

func anyValue(vs []*float64) bool {
	for _, v := range vs {
		if v != nil {
			return true
		}
	}
	return false
}

// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package perfdata

import (
	"fmt"
	"strings"
	"time"

	"github.com/rickb777/date/period"

	"github.com/elastic/perfdatacat/internal/fault"
)

// DefaultLookback applies when a requested duration cannot be used.
const DefaultLookback = 12 * time.Hour

// LowerBound subtracts an ISO 8601 duration such as PT12H, P7D or P1M from
// now. A malformed or negative duration yields now minus DefaultLookback
// together with a validation error the caller may log.
func LowerBound(now time.Time, duration string) (time.Time, error) {
	fallback := now.Add(-DefaultLookback)

	p, err := period.Parse(strings.TrimSpace(duration))
	if err != nil {
		return fallback, fault.New(fault.Validation, "parse duration", err)
	}
	if p.IsNegative() {
		return fallback, fault.Errorf(fault.Validation, "parse duration", "duration %q is negative", duration)
	}

	from, _ := p.Negate().AddTo(now)
	if from.After(now) {
		return fallback, fault.New(fault.Validation, "parse duration", fmt.Errorf("duration %q moves past now", duration))
	}
	return from, nil
}

// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package perfdata

import (
	"testing"
	"time"

	"github.com/elastic/perfdatacat/internal/fault"
)

func TestLowerBound(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		duration string
		want     time.Time
		wantErr  bool
	}{
		{duration: "PT12H", want: now.Add(-12 * time.Hour)},
		{duration: "PT30M", want: now.Add(-30 * time.Minute)},
		{duration: "P7D", want: now.AddDate(0, 0, -7)},
		{duration: "P1M", want: now.AddDate(0, -1, 0)},
		{duration: " P1D ", want: now.AddDate(0, 0, -1)},
		{duration: "12h", want: now.Add(-DefaultLookback), wantErr: true},
		{duration: "", want: now.Add(-DefaultLookback), wantErr: true},
		{duration: "-PT1H", want: now.Add(-DefaultLookback), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.duration, func(t *testing.T) {
			t.Parallel()
			got, err := LowerBound(now, tt.duration)
			if tt.wantErr {
				if fault.KindOf(err) != fault.Validation {
					t.Errorf("error = %v, want validation error", err)
				}
			} else if err != nil {
				t.Fatalf("LowerBound(%q): %v", tt.duration, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("LowerBound(%q) = %v, want %v", tt.duration, got, tt.want)
			}
		})
	}
}

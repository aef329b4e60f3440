// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package fault

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestNew_NilError(t *testing.T) {
	if err := New(Network, "search", nil); err != nil {
		t.Errorf("New(nil) = %v, want nil", err)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"plain error", errors.New("boom"), Unknown},
		{"nil", nil, Unknown},
		{"direct", New(HTTP, "search", errors.New("503")), HTTP},
		{"wrapped", fmt.Errorf("page 2: %w", New(Decode, "decode", io.ErrUnexpectedEOF)), Decode},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Errorf("KindOf() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	err := New(Decode, "decode page", io.ErrUnexpectedEOF)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("expected errors.Is to see the wrapped error")
	}
	if err.Error() != "decode page: unexpected EOF" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestKind_Classification(t *testing.T) {
	tests := []struct {
		kind      Kind
		retryable bool
		fatal     bool
	}{
		{Configuration, false, true},
		{Network, true, false},
		{HTTP, false, false},
		{Decode, false, false},
		{Validation, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.kind.String(), func(t *testing.T) {
			if tc.kind.Retryable() != tc.retryable {
				t.Errorf("Retryable() = %v, want %v", tc.kind.Retryable(), tc.retryable)
			}
			if tc.kind.Fatal() != tc.fatal {
				t.Errorf("Fatal() = %v, want %v", tc.kind.Fatal(), tc.fatal)
			}
		})
	}
}

func TestKind_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		Kind Kind `json:"kind"`
	}{HTTP})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != `{"kind":"http"}` {
		t.Errorf("got %s", out)
	}
}

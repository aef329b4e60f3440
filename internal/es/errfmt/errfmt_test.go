// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package errfmt

import (
	"strings"
	"testing"
)

func TestFormatQueryError(t *testing.T) {
	tests := []struct {
		name      string
		status    string
		body      []byte
		queryJSON []byte
		checks    []string // Substrings that should be in the error
	}{
		{
			name:      "basic error formatting",
			status:    "400 Bad Request",
			body:      []byte(`{"error": "parsing exception"}`),
			queryJSON: []byte(`{"query": {"match_all": {}}}`),
			checks: []string{
				"search failed: 400 Bad Request",
				"parsing exception",
				"match_all",
			},
		},
		{
			name:      "pretty prints valid JSON query",
			status:    "500 Internal Server Error",
			body:      []byte(`server error`),
			queryJSON: []byte(`{"query":{"bool":{"must":[]}}}`),
			checks: []string{
				"search failed: 500 Internal Server Error",
				"server error",
				"\"query\":", // Indicates pretty printing added quotes on new lines
				"\"bool\":",
			},
		},
		{
			name:      "handles invalid JSON query gracefully",
			status:    "400 Bad Request",
			body:      []byte(`error`),
			queryJSON: []byte(`{invalid json`),
			checks: []string{
				"search failed: 400 Bad Request",
				"{invalid json", // Should include raw query
			},
		},
		{
			name:      "handles empty query",
			status:    "400 Bad Request",
			body:      []byte(`error`),
			queryJSON: []byte(``),
			checks: []string{
				"search failed: 400 Bad Request",
			},
		},
		{
			name:      "handles empty body",
			status:    "404 Not Found",
			body:      []byte(``),
			queryJSON: []byte(`{"query": {}}`),
			checks: []string{
				"search failed: 404 Not Found",
				"Error: \n", // Empty error body
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := FormatQueryError(tc.status, tc.body, tc.queryJSON)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}

			errMsg := err.Error()
			for _, check := range tc.checks {
				if !strings.Contains(errMsg, check) {
					t.Errorf("Error message should contain %q\nGot: %s", check, errMsg)
				}
			}
		})
	}
}

func TestFormatQueryError_PrettyPrintsQuery(t *testing.T) {
	// Verify that a compact JSON query gets pretty-printed
	status := "400 Bad Request"
	body := []byte(`error`)
	compactQuery := []byte(`{"query":{"bool":{"must":[{"match":{"field":"value"}}]}}}`)

	err := FormatQueryError(status, body, compactQuery)
	errMsg := err.Error()

	// Pretty-printed JSON should have newlines and indentation
	if !strings.Contains(errMsg, "\n  ") {
		t.Error("Expected pretty-printed query with newlines and indentation")
	}

	// Should still contain the query content
	if !strings.Contains(errMsg, "match") || !strings.Contains(errMsg, "field") {
		t.Error("Expected query content to be preserved")
	}
}

func TestReason(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "elasticsearch error envelope",
			body: `{"error":{"type":"index_not_found_exception","reason":"no such index [metrics-icinga2.ping4-default]"},"status":404}`,
			want: "index_not_found_exception: no such index [metrics-icinga2.ping4-default]",
		},
		{
			name: "type without reason",
			body: `{"error":{"type":"search_phase_execution_exception"}}`,
			want: "search_phase_execution_exception",
		},
		{
			name: "plain text body",
			body: "  upstream connect error \n",
			want: "upstream connect error",
		},
		{
			name: "empty body",
			body: "",
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Reason([]byte(tc.body)); got != tc.want {
				t.Errorf("Reason() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestReason_TruncatesLongBodies(t *testing.T) {
	body := []byte(strings.Repeat("x", MaxBodyLen+100))
	got := Reason(body)
	if len(got) != MaxBodyLen+len("...") {
		t.Errorf("len(Reason()) = %d, want %d", len(got), MaxBodyLen+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("truncated reason should end with ...")
	}
}

func TestFormatStatusError(t *testing.T) {
	err := FormatStatusError("info", "401 Unauthorized", []byte(`{"error":{"type":"security_exception","reason":"missing authentication credentials"}}`))
	want := "info failed: 401 Unauthorized - security_exception: missing authentication credentials"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}

	err = FormatStatusError("info", "502 Bad Gateway", nil)
	if err.Error() != "info failed: 502 Bad Gateway" {
		t.Errorf("got %q", err.Error())
	}
}

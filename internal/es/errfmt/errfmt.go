// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package errfmt renders Elasticsearch error responses for logs and fetch
// results.
package errfmt

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MaxBodyLen caps how much of a response body ends up in an error message.
const MaxBodyLen = 2048

// FormatQueryError builds a detailed error including response status, body, and pretty query.
// It best-effort indents the provided query JSON; on failure it still includes the raw query.
func FormatQueryError(status string, body []byte, queryJSON []byte) error {
	var prettyQuery bytes.Buffer
	_ = json.Indent(&prettyQuery, queryJSON, "", "  ")
	if prettyQuery.Len() == 0 {
		prettyQuery.Write(queryJSON)
	}
	return fmt.Errorf("search failed: %s\nError: %s\n\nQuery:\n%s", status, Reason(body), prettyQuery.String())
}

// FormatStatusError describes a failed request that carried no query.
func FormatStatusError(op, status string, body []byte) error {
	if reason := Reason(body); reason != "" {
		return fmt.Errorf("%s failed: %s - %s", op, status, reason)
	}
	return fmt.Errorf("%s failed: %s", op, status)
}

// Reason extracts error.type and error.reason from an Elasticsearch error
// body. Other bodies are returned trimmed and truncated to MaxBodyLen.
func Reason(body []byte) string {
	var envelope struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Type != "" {
		if envelope.Error.Reason == "" {
			return envelope.Error.Type
		}
		return envelope.Error.Type + ": " + envelope.Error.Reason
	}

	body = bytes.TrimSpace(body)
	if len(body) > MaxBodyLen {
		return string(body[:MaxBodyLen]) + "..."
	}
	return string(body)
}

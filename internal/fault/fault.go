// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package fault classifies the failures perfdatacat can run into so callers
// can tell what the transport retries, what aborts a fetch, and what only
// degrades a result.
package fault

import (
	"errors"
	"fmt"
)

// Kind identifies the class of a failure.
type Kind int

const (
	// Unknown is reported for errors that carry no Kind.
	Unknown Kind = iota
	// Configuration covers empty host pools, bad URLs and invalid timeouts.
	Configuration
	// Network covers refused connections, timeouts and DNS failures.
	Network
	// HTTP covers non-2xx answers from a reachable host.
	HTTP
	// Decode covers malformed response bodies.
	Decode
	// Validation covers malformed request parameters such as durations.
	Validation
)

var kindNames = map[Kind]string{
	Unknown:       "unknown",
	Configuration: "configuration",
	Network:       "network",
	HTTP:          "http",
	Decode:        "decode",
	Validation:    "validation",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText renders the kind by name in JSON output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Retryable reports whether the transport may retry against another host.
func (k Kind) Retryable() bool {
	return k == Network
}

// Fatal reports whether the failure must stop setup rather than a single fetch.
func (k Kind) Fatal() bool {
	return k == Configuration
}

// Error is a failure tagged with its Kind.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "search" or "configure hosts"
	Err  error
}

// New wraps err with kind and op. A nil err yields nil.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a kinded error from a format string.
func Errorf(kind Kind, op, format string, args ...interface{}) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Unknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

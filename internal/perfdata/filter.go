// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package perfdata

import (
	"github.com/gobwas/glob"
)

// Filter decides which metric labels are kept. Patterns are shell-style
// globs. No separators are configured, so '*' also matches '/' in disk labels.
type Filter struct {
	include    []glob.Glob
	exclude    []glob.Glob
	hasInclude bool
	hasExclude bool
}

// NewFilter compiles include and exclude patterns. A pattern that fails to
// compile never matches.
func NewFilter(include, exclude []string) *Filter {
	return &Filter{
		include:    compileAll(include),
		exclude:    compileAll(exclude),
		hasInclude: len(include) > 0,
		hasExclude: len(exclude) > 0,
	}
}

// Keep reports whether label is included and not excluded.
func (f *Filter) Keep(label string) bool {
	if f.hasInclude && !matchAny(f.include, label) {
		return false
	}
	if f.hasExclude && matchAny(f.exclude, label) {
		return false
	}
	return true
}

// Included reports whether label matches one of patterns. An empty list
// includes everything.
func Included(label string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	return matchAny(compileAll(patterns), label)
}

// Excluded reports whether label matches one of patterns. An empty list
// excludes nothing.
func Excluded(label string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	return matchAny(compileAll(patterns), label)
}

func compileAll(patterns []string) []glob.Glob {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			continue
		}
		out = append(out, g)
	}
	return out
}

func matchAny(globs []glob.Glob, label string) bool {
	for _, g := range globs {
		if g.Match(label) {
			return true
		}
	}
	return false
}

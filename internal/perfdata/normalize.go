// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package perfdata

import (
	"regexp"
	"strings"
)

var (
	leadingSeparators = regexp.MustCompile(`^[\s\W_]+`)
	nonAlphanumeric   = regexp.MustCompile(`[^A-Za-z0-9]+`)
	repeatedUnderline = regexp.MustCompile(`_+`)
)

// NormalizeCheckCommand slugs a check command name the way the data stream
// writer does when it names indices: "  !!Check_HTTP--Foo!!" becomes
// "check_http_foo". The output holds only lowercase ASCII letters, digits and
// single underscores between them.
func NormalizeCheckCommand(s string) string {
	s = leadingSeparators.ReplaceAllString(s, "")
	s = nonAlphanumeric.ReplaceAllString(s, "_")
	s = repeatedUnderline.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	return strings.ToLower(s)
}

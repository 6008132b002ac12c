// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

// RedactedStr replaces secrets in anything printed or serialized for display.
const RedactedStr = "<redacted>"

// RedactString masks a secret. Empty strings stay empty so callers can tell
// an unset secret from a hidden one.
func RedactString(s string) string {
	if s == "" {
		return ""
	}
	return RedactedStr
}

func IsRedactedString(s string) bool {
	return s == RedactedStr
}

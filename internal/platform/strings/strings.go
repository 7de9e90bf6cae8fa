// Package strings holds the few string and pointer helpers the pipelines share.
// Import it as pstrings.
package strings

import (
	std "strings"
	"unicode/utf8"
)

// IfEmpty is in, or def when in has no elements
func IfEmpty[T any](in, def []T) []T {
	if len(in) > 0 {
		return in
	}
	return def
}

// MustString panics with "<name> is required" when s is blank
func MustString(s, name string) string {
	if std.TrimSpace(s) != "" {
		return s
	}
	panic(name + " is required")
}

// Deref is *p, or def for a nil pointer (nullable dataset columns)
func Deref[T any](p *T, def T) T {
	if p != nil {
		return *p
	}
	return def
}

// Truncate keeps the first n runes of s and appends "..." when anything was cut
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	cut := 0
	for range n {
		_, w := utf8.DecodeRuneInString(s[cut:])
		cut += w
	}
	return s[:cut] + "..."
}

// Package raw reads the LOG_* bootstrap settings before the logger exists.
// The logger imports it, so it must not log.
package raw

import (
	"os"
	"strconv"
	"strings"
)

// Conf is a prefixed, log-free view over environment variables
type Conf struct{ prefix string }

// New returns a root Conf (no prefix)
func New() Conf { return Conf{} }

// Prefix returns a child Conf with an additional prefix (e.g. "LOG_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) value(key string) string { return strings.TrimSpace(os.Getenv(c.prefix + key)) }

// Get returns the trimmed value or def if empty
func (c Conf) Get(key, def string) string {
	if v := c.value(key); v != "" {
		return v
	}
	return def
}

// GetBool is true for 1, true, yes or on (any case); empty -> def, anything else -> false
func (c Conf) GetBool(key string, def bool) bool {
	v := strings.ToLower(c.value(key))
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

// GetInt parses a non-negative integer; empty, signed or non-numeric -> def
func (c Conf) GetInt(key string, def int) int {
	v := c.value(key)
	if v == "" || v[0] == '+' || v[0] == '-' {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

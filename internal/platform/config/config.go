// Package config handles pipeline configuration via environment variables
//
// Flags carry per-run choices; env carries credentials and tuning that stay stable
// across runs (hub cache, object storage, pacing).
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"codecorpus/internal/platform/logger"
)

// Lookup resolves a fully-qualified key; os.LookupEnv is the default
type Lookup func(key string) (string, bool)

// Conf is a namespaced view over a key space (e.g., "CORE_HUB_", "CORE_S3_")
// Use New() for the process env, FromMap for tests, Prefix for module scopes.
type Conf struct {
	prefix string
	lookup Lookup
}

// New creates a root Conf over the process environment
func New() Conf { return Conf{lookup: os.LookupEnv} }

// FromMap creates a root Conf over a fixed set of values
func FromMap(m map[string]string) Conf {
	return Conf{lookup: func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}}
}

// Prefix creates a child Conf with an additional prefix, e.g. cfg.Prefix("CORE_LLM_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p, lookup: c.lookup} }

// key composes the fully-qualified name
func (c Conf) key(k string) string { return c.prefix + k }

// raw returns the trimmed value for key, "" when unset; a zero Conf reads the env
func (c Conf) raw(key string) string {
	look := c.lookup
	if look == nil {
		look = os.LookupEnv
	}
	v, _ := look(c.key(key))
	return strings.TrimSpace(v)
}

// MustString panics if the given key is missing or empty
func (c Conf) MustString(key string) string {
	v := c.raw(key)
	if v == "" {
		logger.Get().Panic().Str("key", c.key(key)).Msg("missing required env")
	}
	return v
}

// MayString returns the value or def if missing/empty
func (c Conf) MayString(key, def string) string {
	if v := c.raw(key); v != "" {
		return v
	}
	return def
}

// parsed reads key through parse; empty yields def, and a parse failure warns and yields def
func parsed[T any](c Conf, key string, def T, kind string, parse func(string) (T, error)) T {
	s := c.raw(key)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Interface("default", def).
			Msg("invalid " + kind + "; using default")
		return def
	}
	return v
}

// MayInt returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayInt(key string, def int) int {
	return parsed(c, key, def, "int", strconv.Atoi)
}

// MayInt64 returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayInt64(key string, def int64) int64 {
	return parsed(c, key, def, "int64", func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
}

// MayFloat64 returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayFloat64(key string, def float64) float64 {
	return parsed(c, key, def, "float64", func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

// MayBool returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayBool(key string, def bool) bool {
	return parsed(c, key, def, "bool", strconv.ParseBool)
}

// MayDuration returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return parsed(c, key, def, "duration", time.ParseDuration)
}

// MayCSV returns the non-blank comma-separated items of key; def if none
func (c Conf) MayCSV(key string, def []string) []string {
	var out []string
	for _, p := range strings.Split(c.raw(key), ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum ensures value is one of allowed (case-insensitive) and returns it lowercased;
// returns def if empty; panics if invalid.
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	if v == "" {
		return v
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return a
		}
	}
	logger.Get().Panic().Str("key", c.key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return "" // unreachable
}

// MaySecret returns KEY when set, otherwise the trimmed contents of the file named by KEY_FILE,
// otherwise def. The value itself is never logged.
func (c Conf) MaySecret(key, def string) string {
	if v := c.raw(key); v != "" {
		return v
	}
	path := c.raw(key + "_FILE")
	if path == "" {
		return def
	}
	b, err := os.ReadFile(path)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(key+"_FILE")).Err(err).Msg("unreadable secret file; using default")
		return def
	}
	if v := strings.TrimSpace(string(b)); v != "" {
		return v
	}
	return def
}

package hub

import (
	"os"
	"path/filepath"
	"time"

	"codecorpus/internal/platform/config"
)

// Config holds hub settings read from the environment
type Config struct {
	BaseURL        string
	Token          string
	CacheDir       string
	RPS            float64
	Timeout        time.Duration
	Revalidate     bool
	RetainMaxBytes int64
}

// FromConfig reads CORE_HUB_* settings and the HF_TOKEN secret
func FromConfig(cfg config.Conf) Config {
	h := cfg.Prefix("CORE_HUB_")
	return Config{
		BaseURL:        h.MayString("BASE_URL", DefaultBaseURL),
		Token:          cfg.MaySecret("HF_TOKEN", ""),
		CacheDir:       h.MayString("CACHE_DIR", filepath.Join(os.TempDir(), "codecorpus-hub")),
		RPS:            h.MayFloat64("RPS", 5),
		Timeout:        h.MayDuration("HTTP_TIMEOUT", 10*time.Minute),
		Revalidate:     h.MayBool("REVALIDATE", false),
		RetainMaxBytes: h.MayInt64("CACHE_MAX_BYTES", 0),
	}
}

// Dataset wires a client and cached fetcher for one dataset split
func (c Config) Dataset(id, cfgName, split string, opts ...StreamOption) Dataset {
	client := NewClient(Options{BaseURL: c.BaseURL, Token: c.Token, RPS: c.RPS, Timeout: c.Timeout})
	fetch := NewCachedFetcher(c.CacheDir, client, WithRevalidate(c.Revalidate), WithRetention(c.RetainMaxBytes))
	return Dataset{Client: client, Fetcher: fetch, ID: id, Config: cfgName, Split: split, Opts: opts}
}

package module

import (
	"codecorpus/internal/adapters/tokenizer"
	"codecorpus/internal/platform/config"
	"codecorpus/internal/services/harvest/service"
)

// Options holds configuration options for the harvester
type Options struct {
	Model            string
	TokenizerURL     string
	FallbackEncoding string
	SkipHidden       bool
}

// FromConfig reads CORE_HARVEST_* and CORE_TOKENIZER_* settings
func FromConfig(cfg config.Conf) Options {
	h := cfg.Prefix("CORE_HARVEST_")
	tk := cfg.Prefix("CORE_TOKENIZER_")
	return Options{
		Model:            tk.MayString("MODEL", tokenizer.DefaultModel),
		TokenizerURL:     tk.MayString("URL", ""),
		FallbackEncoding: h.MayString("FALLBACK_ENCODING", service.DefaultFallback),
		SkipHidden:       h.MayBool("SKIP_HIDDEN", false),
	}
}

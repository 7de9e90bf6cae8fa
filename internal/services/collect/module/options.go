package module

import (
	"codecorpus/internal/platform/config"
	"codecorpus/internal/services/collect/domain"
)

// Options holds configuration options for the collector
type Options struct {
	Dataset       string
	Config        string
	Split         string
	ProgressEvery int
}

// FromConfig reads the collector options from config with CORE_COLLECT_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_COLLECT_")
	return Options{
		Dataset:       c.MayString("DATASET", domain.DefaultDataset),
		Config:        c.MayString("CONFIG", "default"),
		Split:         c.MayString("SPLIT", "train"),
		ProgressEvery: c.MayInt("PROGRESS_EVERY", 10),
	}
}

// Package modkit provides module wiring and core deps
package modkit

import (
	"codecorpus/internal/platform/config"
	"codecorpus/internal/platform/logger"
	"codecorpus/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log   logger.Logger
	Cfg   config.Conf
	Store *store.Store
}

// Files returns the artifact store; a nil Store means a local-only one
func (d Deps) Files() *store.Store {
	if d.Store != nil {
		return d.Store
	}
	return &store.Store{Log: d.Log}
}

// Package module provides the collector module implementation
package module

import (
	"codecorpus/internal/adapters/hub"
	"codecorpus/internal/core/langs"
	"codecorpus/internal/modkit"
	"codecorpus/internal/services/collect/domain"
	"codecorpus/internal/services/collect/ingest"
	"codecorpus/internal/services/collect/service"
)

// Ports defines the collector module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the collector module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs the collector module from config; overrides apply flag values on top
func New(deps modkit.Deps, overrides ...func(*Options)) *Module {
	opts := FromConfig(deps.Cfg)
	for _, o := range overrides {
		o(&opts)
	}

	ds := hub.FromConfig(deps.Cfg).Dataset(opts.Dataset, opts.Config, opts.Split)
	svc := service.New(
		ingest.NewSource(ds),
		langs.Default(),
		service.Config{ProgressEvery: opts.ProgressEvery},
	)

	m := &Module{deps: deps, opts: opts}
	m.ports = Ports{Runner: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "collect" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Options returns the resolved options
func (m *Module) Options() Options { return m.opts }

var _ modkit.Module = (*Module)(nil)

// Package module provides the harvester module implementation
package module

import (
	"codecorpus/internal/adapters/tokenizer"
	"codecorpus/internal/modkit"
	"codecorpus/internal/services/harvest/domain"
	"codecorpus/internal/services/harvest/service"
)

// Ports defines the harvester module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the harvester module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New builds the tokenizer and the harvest service; overrides apply flag values on top of config
func New(deps modkit.Deps, overrides ...func(*Options)) (*Module, error) {
	opts := FromConfig(deps.Cfg)
	for _, o := range overrides {
		o(&opts)
	}

	tok, err := tokenizer.New(opts.Model, opts.TokenizerURL)
	if err != nil {
		return nil, err
	}
	svc, err := service.New(tok, service.Config{
		FallbackEncoding: opts.FallbackEncoding,
		SkipHidden:       opts.SkipHidden,
	})
	if err != nil {
		return nil, err
	}

	m := &Module{deps: deps, opts: opts}
	m.ports = Ports{Runner: svc}
	return m, nil
}

// Name returns the module name
func (m *Module) Name() string { return "harvest" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Options returns the resolved options
func (m *Module) Options() Options { return m.opts }

var _ modkit.Module = (*Module)(nil)

// Package module provides the training driver module implementation
package module

import (
	"context"

	"codecorpus/internal/adapters/hub"
	"codecorpus/internal/modkit"
	"codecorpus/internal/services/train/domain"
	"codecorpus/internal/services/train/ingest"
	"codecorpus/internal/services/train/service"
)

// Ports defines the training driver module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the training driver module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New wires the hub/JSON loader, the artifact store and the trainer process factory
func New(deps modkit.Deps) *Module {
	files := deps.Files()
	svc := service.New(
		ingest.NewLoader(files, hub.FromConfig(deps.Cfg)),
		files,
		ingest.NewTrainerFactory(),
	)
	m := &Module{deps: deps}
	m.ports = Ports{Runner: svc}
	return m
}

// LoadConfig reads and validates the YAML run config at uri with overrides applied
func (m *Module) LoadConfig(ctx context.Context, uri string, sets []string) (domain.Config, error) {
	return service.LoadFile(ctx, m.deps.Files(), uri, sets)
}

// Name returns the module name
func (m *Module) Name() string { return "train" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

var _ modkit.Module = (*Module)(nil)

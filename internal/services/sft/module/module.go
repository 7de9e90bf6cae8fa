// Package module provides the prompt-pair generator module implementation
package module

import (
	"context"
	"strings"

	"codecorpus/internal/adapters/llm"
	"codecorpus/internal/modkit"
	perr "codecorpus/internal/platform/errors"
	"codecorpus/internal/platform/logger"
	"codecorpus/internal/services/sft/domain"
	"codecorpus/internal/services/sft/service"
)

// Ports defines the generator module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the generator module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New picks the chat backend and builds the generator; overrides apply flag values on top of config
func New(ctx context.Context, deps modkit.Deps, overrides ...func(*Options)) (*Module, error) {
	opts := FromConfig(deps.Cfg)
	for _, o := range overrides {
		o(&opts)
	}

	menu, err := opts.menu()
	if err != nil {
		return nil, err
	}
	chat, err := newChat(ctx, opts)
	if err != nil {
		return nil, err
	}
	gen := service.New(chat, service.Config{
		MaxCodeLength:    opts.MaxCodeLength,
		Menu:             menu,
		ResponseLanguage: opts.ResponseLanguage,
	})

	names := make([]string, 0, len(menu))
	for _, k := range gen.Menu() {
		names = append(names, k.String())
	}
	logger.Named("sft").Info().
		Str("provider", opts.Provider).
		Strs("menu", names).
		Msg("sft: generator ready")

	m := &Module{deps: deps, opts: opts}
	m.ports = Ports{Runner: gen}
	return m, nil
}

// newChat is a seam so tests can avoid real backends
var newChat = func(ctx context.Context, o Options) (domain.Chat, error) {
	switch strings.ToLower(o.Provider) {
	case "azure":
		return llm.NewAzure(llm.AzureOptions{
			Endpoint:   o.AzureEndpoint,
			Deployment: o.AzureDeployment,
			APIVersion: o.AzureAPIVersion,
			APIKey:     o.AzureAPIKey,
			Sampling:   o.sampling(),
			Pacing:     o.pacing(),
		})
	case "gemini":
		return llm.NewGemini(ctx, llm.GeminiOptions{
			APIKey:   o.GeminiAPIKey,
			Model:    o.GeminiModel,
			Sampling: o.sampling(),
			Pacing:   o.pacing(),
		})
	}
	return nil, perr.WithField(perr.InvalidArgf("unknown provider %q (want azure or gemini)", o.Provider), "provider")
}

// Name returns the module name
func (m *Module) Name() string { return "sft" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Options returns the resolved options
func (m *Module) Options() Options { return m.opts }

var _ modkit.Module = (*Module)(nil)

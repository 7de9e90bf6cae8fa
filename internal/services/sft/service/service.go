// Package service turns code records into instruction/response pairs via a chat model
package service

import (
	"context"
	"slices"
	"strings"
	"unicode/utf8"

	"codecorpus/internal/core/dataset"
	"codecorpus/internal/core/langhint"
	"codecorpus/internal/core/langs"
	"codecorpus/internal/core/strategy"
	perr "codecorpus/internal/platform/errors"
	"codecorpus/internal/platform/logger"
	pstrings "codecorpus/internal/platform/strings"
	"codecorpus/internal/platform/validate"
	"codecorpus/internal/services/sft/domain"
)

// DefaultMaxCodeLength is the longest record content, in characters, sent to the model
const DefaultMaxCodeLength = 2000

// Config is fixed for the life of a Generator
type Config struct {
	MaxCodeLength    int             // characters; <=0 -> 2000
	Menu             []strategy.Kind // nil -> strategy.DefaultMenu()
	ResponseLanguage string          // "" -> Korean
}

// Generator applies strategies from its menu to code records
type Generator struct {
	chat  domain.Chat
	langs domain.Classifier
	cfg   Config
}

// Option configures a Generator
type Option func(*Generator)

// WithClassifier overrides the language table used for fenced code
func WithClassifier(c domain.Classifier) Option { return func(g *Generator) { g.langs = c } }

// New constructs a Generator; the menu is copied so later edits by the caller have no effect
func New(chat domain.Chat, cfg Config, opts ...Option) *Generator {
	if chat == nil {
		panic("sft.Generator requires a non nil Chat")
	}
	if cfg.MaxCodeLength <= 0 {
		cfg.MaxCodeLength = DefaultMaxCodeLength
	}
	cfg.Menu = slices.Clone(pstrings.IfEmpty(cfg.Menu, strategy.DefaultMenu()))
	for _, k := range cfg.Menu {
		if !k.Valid() {
			panic("sft.Generator menu holds an invalid strategy")
		}
	}
	if cfg.ResponseLanguage == "" {
		cfg.ResponseLanguage = strategy.DefaultResponseLanguage
	}
	g := &Generator{chat: chat, langs: langs.Default(), cfg: cfg}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Menu returns a copy of the configured strategies
func (g *Generator) Menu() []strategy.Kind { return slices.Clone(g.cfg.Menu) }

// Run validates the request, applies the sample cut and generates pairs
func (g *Generator) Run(ctx context.Context, req domain.Request) ([]dataset.PromptPair, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	records := req.Records
	if req.SampleSize > 0 && req.SampleSize < len(records) {
		records = records[:req.SampleSize]
	}
	pairs, err := g.Generate(ctx, records, req.StrategiesPerRecord, req.SkipErrors)
	if err != nil {
		return nil, err
	}

	log := logger.C(ctx)
	for _, c := range dataset.CountByStrategy(pairs) {
		log.Info().Str("strategy", c.Name).Int("pairs", c.Count).Msg("sft: per strategy")
	}
	log.Info().Int("records", len(records)).Int("pairs", len(pairs)).Msg("sft: done")
	return pairs, nil
}

// Generate applies the first n menu strategies to each record in order
func (g *Generator) Generate(ctx context.Context, records []dataset.CodeRecord, n int, skipErrors bool) ([]dataset.PromptPair, error) {
	log := logger.C(ctx).With().Str("component", "sft").Logger()
	menu := g.cfg.Menu[:min(max(n, 0), len(g.cfg.Menu))]

	pairs := make([]dataset.PromptPair, 0, len(records)*len(menu))
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return pairs, perr.Wrap(err, perr.ErrorCodeUnavailable, "sft canceled")
		}
		if chars := utf8.RuneCountInString(rec.Content); chars > g.cfg.MaxCodeLength {
			log.Info().
				Str("file", rec.FilePath).
				Int("chars", chars).
				Int("max", g.cfg.MaxCodeLength).
				Msg("sft: skip long record")
			continue
		}

		for _, k := range menu {
			r := g.Apply(ctx, k, rec)
			if r.Err != nil {
				if !skipErrors {
					return nil, perr.Wrapf(r.Err, perr.CodeOf(r.Err), "%s on %s", k, rec.FilePath)
				}
				log.Warn().Err(r.Err).
					Str("strategy", k.String()).
					Str("file", rec.FilePath).
					Msg("sft: strategy failed, skipping")
				continue
			}
			pairs = append(pairs, r.Pair)
		}

		if (i+1)%10 == 0 {
			log.Info().Int("done", i+1).Int("total", len(records)).Int("pairs", len(pairs)).Msg("sft: progress")
		}
	}
	return pairs, nil
}

// Apply runs one strategy against one record
func (g *Generator) Apply(ctx context.Context, k strategy.Kind, rec dataset.CodeRecord) domain.Result {
	res := domain.Result{Strategy: k}
	t := strategy.Build(k, rec, g.cfg.ResponseLanguage)

	reply, err := g.chat.Complete(ctx, t.System, t.User)
	if err != nil {
		res.Err = err
		return res
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		res.Err = perr.Upstreamf("empty reply")
		return res
	}
	if !langhint.WrittenIn(reply, g.cfg.ResponseLanguage) {
		logger.C(ctx).Warn().
			Str("strategy", k.String()).
			Str("file", rec.FilePath).
			Str("want", g.cfg.ResponseLanguage).
			Str("script", langhint.Predominant(reply)).
			Msg("sft: reply not in response language")
	}

	meta := dataset.PairMeta{Strategy: k.String(), RepoID: rec.RepoID, FilePath: rec.FilePath}
	if k == strategy.FunctionImplementation {
		lang, _ := g.langs.Classify(rec.FilePath)
		res.Pair = dataset.PromptPair{Instruction: reply, Output: strategy.Fence(lang, rec.Content), Metadata: meta}
		return res
	}
	res.Pair = dataset.PromptPair{Instruction: t.Instruction, Output: reply, Metadata: meta}
	return res
}

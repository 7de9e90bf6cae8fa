// Package logger owns the process-wide zerolog root and the run-scoped
// children every pipeline logs through.
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"codecorpus/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is zerolog's logger; the alias keeps call sites off the vendor name
type Logger = zerolog.Logger

// Options controls the root logger. Format is "console" or "json".
type Options struct {
	Level        string
	Format       string
	Service      string
	Component    string
	Writer       io.Writer // stdout when nil
	WithCaller   bool
	SampleEvery  int // keep 1 in N events when > 1
	StaticFields map[string]string
}

// FromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_SERVICE, LOG_COMPONENT,
// LOG_CALLER and LOG_SAMPLE_EVERY.
func FromEnv() Options {
	env := raw.New().Prefix("LOG_")
	return Options{
		Level:       env.Get("LEVEL", "info"),
		Format:      strings.ToLower(env.Get("FORMAT", "console")),
		Service:     env.Get("SERVICE", ""),
		Component:   env.Get("COMPONENT", ""),
		WithCaller:  env.GetBool("CALLER", false),
		SampleEvery: env.GetInt("SAMPLE_EVERY", 0),
	}
}

var (
	mu   sync.RWMutex
	root *Logger
)

// Init installs the root logger; only the first call takes effect
func Init(opt Options) {
	mu.Lock()
	defer mu.Unlock()
	if root != nil {
		return
	}
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano
	l := New(opt)
	root = &l
}

// Get returns the root, initializing it from the environment on first use
func Get() *Logger {
	mu.RLock()
	l := root
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// New builds a standalone logger from opt without touching the root
func New(opt Options) Logger {
	w := opt.Writer
	if w == nil {
		w = os.Stdout
	}
	if opt.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	fields := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp()
	if bi, ok := debug.ReadBuildInfo(); ok {
		fields = fields.Str("go_version", bi.GoVersion)
	}
	for k, v := range map[string]string{"service": opt.Service, "component": opt.Component} {
		if v != "" {
			fields = fields.Str(k, v)
		}
	}
	for k, v := range opt.StaticFields {
		fields = fields.Str(k, v)
	}
	if opt.WithCaller {
		fields = fields.Caller()
	}

	l := fields.Logger()
	if opt.SampleEvery > 1 {
		l = l.Sample(&zerolog.BasicSampler{N: uint32(opt.SampleEvery)})
	}
	return l
}

// parseLevel accepts zerolog's names plus "warning"; anything unknown is info
func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

type runKey struct{}

type run struct{ id, pipeline string }

// WithRun tags ctx with the run id and pipeline name that C attaches to every line
func WithRun(ctx context.Context, runID, pipeline string) context.Context {
	if runID == "" && pipeline == "" {
		return ctx
	}
	return context.WithValue(ctx, runKey{}, run{id: runID, pipeline: pipeline})
}

// RunID is the id stored by WithRun, or ""
func RunID(ctx context.Context) string {
	r, _ := ctx.Value(runKey{}).(run)
	return r.id
}

// C is the root logger with ctx's run fields attached
func C(ctx context.Context) *Logger {
	r, ok := ctx.Value(runKey{}).(run)
	if !ok {
		return Get()
	}
	b := Get().With()
	if r.id != "" {
		b = b.Str("run_id", r.id)
	}
	if r.pipeline != "" {
		b = b.Str("pipeline", r.pipeline)
	}
	l := b.Logger()
	return &l
}

// Named is the root logger with a component field
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}

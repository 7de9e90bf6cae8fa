// Package cli holds the bootstrap shared by the pipeline binaries
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"codecorpus/internal/core/version"
	"codecorpus/internal/modkit"
	"codecorpus/internal/platform/config"
	perr "codecorpus/internal/platform/errors"
	"codecorpus/internal/platform/logger"
	"codecorpus/internal/platform/store"
	pstrings "codecorpus/internal/platform/strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// RunFunc is the body of a pipeline command
type RunFunc func(ctx context.Context, deps modkit.Deps) error

// Command finishes a pipeline root command: version, logger bootstrap in
// PersistentPreRunE, a SIGINT/SIGTERM aware context tagged with a run id, and the store
func Command(pipeline string, c *cobra.Command, run RunFunc) *cobra.Command {
	c.Version = version.Info(pstrings.MustString(pipeline, "pipeline")).String()
	c.SilenceUsage = true
	c.SilenceErrors = true

	c.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		opts := logger.FromEnv()
		if opts.Service == "" {
			opts.Service = pipeline
		}
		logger.Init(opts)
		return nil
	}

	c.RunE = func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logger.WithRun(ctx, uuid.NewString(), pipeline)

		cfg := config.New()
		st, err := store.Open(ctx, store.FromConfig(cfg), store.WithLogger(*logger.Named("store")))
		if err != nil {
			return perr.WithOp(err, "store.Open")
		}
		defer func() {
			if err := st.Close(context.Background()); err != nil {
				logger.C(ctx).Error().Err(err).Msg("failed to close store")
			}
		}()

		deps := modkit.Deps{Log: *logger.Named(pipeline), Cfg: cfg, Store: st}
		logger.C(ctx).Info().Str("version", c.Version).Msg(pipeline + ": start")
		return run(ctx, deps)
	}
	return c
}

// Execute runs the command and returns the process exit code
func Execute(c *cobra.Command) int {
	if err := c.ExecuteContext(context.Background()); err != nil {
		ev := logger.Get().Error().Err(err)
		if e, ok := perr.As(err); ok {
			ev = ev.Str("code", e.Code().String())
			if e.Field() != "" {
				ev = ev.Str("field", e.Field())
			}
		}
		ev.Msg(c.Name() + ": failed")
		return 1
	}
	return 0
}

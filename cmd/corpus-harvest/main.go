package main

import (
	"context"
	"os"

	"codecorpus/internal/adapters/tokenizer"
	"codecorpus/internal/core/dataset"
	"codecorpus/internal/modkit"
	"codecorpus/internal/platform/cli"
	"codecorpus/internal/platform/logger"
	harvestdom "codecorpus/internal/services/harvest/domain"
	harvestmod "codecorpus/internal/services/harvest/module"
	harvestsvc "codecorpus/internal/services/harvest/service"

	"github.com/spf13/cobra"
)

type options struct {
	inputDir     string
	repoID       string
	outputPath   string
	modelName    string
	tokenizerURL string
	fallback     string
	skipHidden   bool
}

func main() {
	var o options
	root := &cobra.Command{
		Use:   "corpus-harvest",
		Short: "Turn a local source tree into token-annotated code records",
	}

	f := root.Flags()
	f.StringVar(&o.inputDir, "input_dir", "", "directory to walk (required)")
	f.StringVar(&o.repoID, "repo_id", "", "repo id stamped on every record (required)")
	f.StringVar(&o.outputPath, "output_path", "", "output JSON path or s3:// uri (required)")
	f.StringVar(&o.modelName, "model_name", tokenizer.DefaultModel, "model whose tokenizer counts tokens")
	f.StringVar(&o.tokenizerURL, "tokenizer_url", "", "remote tokenize endpoint; defaults to CORE_TOKENIZER_URL")
	f.StringVar(&o.fallback, "fallback_encoding", harvestsvc.DefaultFallback, "encoding tried when a file is not UTF-8")
	f.BoolVar(&o.skipHidden, "skip_hidden", false, "skip dot files and dot directories")
	for _, name := range []string{"input_dir", "repo_id", "output_path"} {
		_ = root.MarkFlagRequired(name)
	}

	cli.Command("corpus-harvest", root, func(ctx context.Context, deps modkit.Deps) error {
		m, err := harvestmod.New(deps, func(opts *harvestmod.Options) {
			if f.Changed("model_name") {
				opts.Model = o.modelName
			}
			if f.Changed("tokenizer_url") {
				opts.TokenizerURL = o.tokenizerURL
			}
			if f.Changed("fallback_encoding") {
				opts.FallbackEncoding = o.fallback
			}
			if f.Changed("skip_hidden") {
				opts.SkipHidden = o.skipHidden
			}
		})
		if err != nil {
			return err
		}
		return run(ctx, deps, m, o)
	})
	os.Exit(cli.Execute(root))
}

func run(ctx context.Context, deps modkit.Deps, m *harvestmod.Module, o options) error {
	log := logger.C(ctx)
	res, err := modkit.MustPortsOf[harvestdom.RunnerPort](m).Run(ctx, harvestdom.Request{
		InputDir: o.inputDir,
		RepoID:   o.repoID,
	})
	if err != nil {
		return err
	}

	// output first, so an empty harvest still leaves [] behind before stats fail
	records := res.Records
	if records == nil {
		records = []dataset.CodeRecord{}
	}
	if err := deps.Files().WriteJSON(ctx, o.outputPath, records); err != nil {
		return err
	}
	log.Info().Int("files", len(records)).Str("output", o.outputPath).Msg("harvest: saved")

	stats, err := dataset.ComputeTokenStats(records)
	if err != nil {
		return err
	}
	log.Info().
		Int("count", stats.Count).
		Int("min", stats.Min).Str("min_path", stats.MinPath).
		Int("max", stats.Max).Str("max_path", stats.MaxPath).
		Float64("mean", stats.Mean).
		Msg("harvest: token stats")
	return nil
}

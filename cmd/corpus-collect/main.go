package main

import (
	"context"
	"os"
	"strings"

	"codecorpus/internal/core/dataset"
	"codecorpus/internal/core/langs"
	"codecorpus/internal/modkit"
	"codecorpus/internal/platform/cli"
	"codecorpus/internal/platform/logger"
	collectdom "codecorpus/internal/services/collect/domain"
	collectmod "codecorpus/internal/services/collect/module"

	"github.com/spf13/cobra"
)

type options struct {
	languages     []string
	sampleSize    int
	outputPath    string
	dataset       string
	config        string
	split         string
	progressEvery int
}

func main() {
	var o options
	root := &cobra.Command{
		Use:   "corpus-collect",
		Short: "Sample source files in chosen languages from a hub code dataset",
		Long: `Streams a Hugging Face code dataset and keeps rows whose file extension
belongs to one of the requested languages, stopping at --sample_size records.

Supported languages: ` + strings.Join(langs.Default().Names(), ", "),
	}

	f := root.Flags()
	f.StringSliceVar(&o.languages, "languages", nil, "languages to keep, comma separated or repeated (required)")
	f.IntVar(&o.sampleSize, "sample_size", 100, "number of records to collect")
	f.StringVar(&o.outputPath, "output_path", "data/output/github2025.json", "output JSON path or s3:// uri")
	f.StringVar(&o.dataset, "dataset", collectdom.DefaultDataset, "hub dataset id")
	f.StringVar(&o.config, "config", "default", "hub dataset config")
	f.StringVar(&o.split, "split", "train", "hub dataset split")
	f.IntVar(&o.progressEvery, "progress_every", 10, "log progress every N collected records")
	_ = root.MarkFlagRequired("languages")

	cli.Command("corpus-collect", root, func(ctx context.Context, deps modkit.Deps) error {
		m := collectmod.New(deps, func(opts *collectmod.Options) {
			if f.Changed("dataset") || opts.Dataset == "" {
				opts.Dataset = o.dataset
			}
			if f.Changed("config") {
				opts.Config = o.config
			}
			if f.Changed("split") {
				opts.Split = o.split
			}
			if f.Changed("progress_every") {
				opts.ProgressEvery = o.progressEvery
			}
		})
		return run(ctx, deps, m, o)
	})
	os.Exit(cli.Execute(root))
}

func run(ctx context.Context, deps modkit.Deps, m *collectmod.Module, o options) error {
	log := logger.C(ctx)
	res, err := modkit.MustPortsOf[collectdom.RunnerPort](m).Run(ctx, collectdom.Request{
		Languages:  o.languages,
		SampleSize: o.sampleSize,
	})
	if err != nil {
		return err
	}

	for _, c := range dataset.SortedCounts(res.PerLanguage) {
		log.Info().Str("language", c.Name).Int("records", c.Count).Msg("collect: per language")
	}
	if res.Short(o.sampleSize) {
		log.Warn().
			Int("collected", len(res.Records)).
			Int("target", o.sampleSize).
			Msg("collect: dataset exhausted before target")
	}

	if err := deps.Files().WriteJSON(ctx, o.outputPath, res.Records); err != nil {
		return err
	}
	log.Info().Int("records", len(res.Records)).Str("output", o.outputPath).Msg("collect: saved")
	return nil
}

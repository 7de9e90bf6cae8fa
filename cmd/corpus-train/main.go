package main

import (
	"context"
	"os"

	"codecorpus/internal/modkit"
	"codecorpus/internal/platform/cli"
	"codecorpus/internal/platform/logger"
	traindom "codecorpus/internal/services/train/domain"
	trainmod "codecorpus/internal/services/train/module"

	"github.com/spf13/cobra"
)

type options struct {
	config string
	sets   []string
	dryRun bool
}

func main() {
	var o options
	root := &cobra.Command{
		Use:   "corpus-train",
		Short: "Prepare a continued pre-training dataset and run the trainer",
		Long: `Loads every data.train_path source (JSON record files or hub dataset ids),
renders each record through the CPT template, writes a parquet dataset and a job
file, then runs trainer.command with --job <path>.

` + traindom.JobHelp + `

Example:
  corpus-train --config configs/cpt_train.yaml --set training.learning_rate=1e-4`,
	}

	f := root.Flags()
	f.StringVar(&o.config, "config", "configs/cpt_train.yaml", "YAML run config path or s3:// uri")
	f.StringArrayVar(&o.sets, "set", nil, "override a config value, e.g. --set lora.r=32 (repeatable)")
	f.BoolVar(&o.dryRun, "dry_run", false, "write the dataset and job file without starting the trainer")

	cli.Command("corpus-train", root, func(ctx context.Context, deps modkit.Deps) error {
		m := trainmod.New(deps)
		cfg, err := m.LoadConfig(ctx, o.config, o.sets)
		if err != nil {
			return err
		}

		res, err := modkit.MustPortsOf[traindom.RunnerPort](m).Run(ctx, cfg, o.dryRun)
		if err != nil {
			return err
		}
		logger.C(ctx).Info().
			Int("rows", res.Rows).
			Str("dataset", res.DatasetPath).
			Str("job", res.JobPath).
			Bool("trained", res.Trained).
			Int("uploaded", res.Uploaded).
			Msg("train: finished")
		return nil
	})
	os.Exit(cli.Execute(root))
}

// Package service provides the continued pre-training driver
package service

import (
	"context"

	"codecorpus/internal/core/dataset"
	perr "codecorpus/internal/platform/errors"
	"codecorpus/internal/platform/logger"
	pstrings "codecorpus/internal/platform/strings"
	"codecorpus/internal/platform/store"
	"codecorpus/internal/services/train/domain"
)

const (
	parquetContentType = "application/vnd.apache.parquet"
	firstSampleRunes   = 2000
)

// Service prepares the CPT dataset and job, runs the trainer and publishes the model
type Service struct {
	Load       domain.Loader
	Files      domain.Artifacts
	NewTrainer domain.TrainerFactory
}

// New constructs the training driver
func New(load domain.Loader, files domain.Artifacts, newTrainer domain.TrainerFactory) *Service {
	if load == nil || files == nil || newTrainer == nil {
		panic("train.Service requires a Loader, Artifacts and TrainerFactory")
	}
	return &Service{Load: load, Files: files, NewTrainer: newTrainer}
}

// Run loads and concatenates every source, formats it, writes the dataset and job,
// then trains unless dryRun
func (s *Service) Run(ctx context.Context, cfg domain.Config, dryRun bool) (domain.Result, error) {
	var res domain.Result
	log := logger.C(ctx).With().Str("component", "train").Logger()

	var combined []dataset.CodeRecord
	for _, src := range cfg.Data.TrainPath {
		recs, err := s.Load.Load(ctx, src)
		if err != nil {
			return res, perr.WithOp(err, "load "+src)
		}
		log.Info().Str("source", src).Int("records", len(recs)).Msg("train: loaded source")
		res.PerSource = append(res.PerSource, dataset.Count{Name: src, Count: len(recs)})
		combined = append(combined, recs...)
	}
	if len(combined) == 0 {
		return res, perr.WithField(perr.EmptyInputf("no records in %d sources", len(cfg.Data.TrainPath)), "data.train_path")
	}

	texts := Format(combined, cfg.Data.EOSToken)
	res.Rows = len(texts)
	log.Info().Int("rows", res.Rows).Msg("train: combined dataset")
	log.Info().Str(cfg.Data.TextColumn, pstrings.Truncate(texts[0], firstSampleRunes)).Msg("train: first sample")

	out, err := store.Parse(cfg.Data.OutputDir)
	if err != nil {
		return res, perr.WithField(err, "data.output_dir")
	}
	res.DatasetPath = out.Join("train.parquet").String()
	res.JobPath = out.Join("job.json").String()

	pq, err := encodeParquet(cfg.Data.TextColumn, texts)
	if err != nil {
		return res, err
	}
	if err := s.Files.WriteBytes(ctx, res.DatasetPath, pq, parquetContentType); err != nil {
		return res, err
	}

	job := domain.Job{
		RunID:    logger.RunID(ctx),
		Model:    cfg.Model,
		LoRA:     cfg.LoRA,
		Training: cfg.Training,
		Dataset: domain.JobDataset{
			Path:       res.DatasetPath,
			Format:     "parquet",
			TextColumn: cfg.Data.TextColumn,
			Rows:       res.Rows,
		},
		FinalModelPath: cfg.Save.FinalModelPath,
	}
	if err := s.Files.WriteJSON(ctx, res.JobPath, job); err != nil {
		return res, err
	}
	log.Info().Str("dataset", res.DatasetPath).Str("job", res.JobPath).Msg("train: job written")

	if dryRun {
		log.Info().Msg("train: dry run, trainer not started")
		return res, nil
	}

	if err := s.NewTrainer(cfg.Trainer).Train(ctx, res.JobPath); err != nil {
		return res, err
	}
	res.Trained = true

	if !store.Exists(cfg.Save.FinalModelPath) {
		return res, perr.WithField(
			perr.NotFoundf("trainer finished but %s is missing", cfg.Save.FinalModelPath),
			"save.final_model_path")
	}
	log.Info().Str("path", cfg.Save.FinalModelPath).Msg("train: model saved")

	if cfg.Save.UploadURI != "" {
		n, err := s.Files.UploadDir(ctx, cfg.Save.FinalModelPath, cfg.Save.UploadURI)
		if err != nil {
			return res, perr.WithOp(err, "upload model")
		}
		res.Uploaded = n
		log.Info().Int("files", n).Str("dest", cfg.Save.UploadURI).Msg("train: model uploaded")
	}
	return res, nil
}

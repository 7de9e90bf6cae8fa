// Package service provides the collector implementation
package service

import (
	"context"
	"errors"
	"io"
	"slices"

	"codecorpus/internal/core/dataset"
	perr "codecorpus/internal/platform/errors"
	"codecorpus/internal/platform/logger"
	pstrings "codecorpus/internal/platform/strings"
	"codecorpus/internal/platform/validate"
	"codecorpus/internal/services/collect/domain"
)

// Config holds collector tuning
type Config struct {
	ProgressEvery int // log every N collected records; <=0 -> 10
}

// Service samples code records from a streaming source
type Service struct {
	Src   domain.Source
	Langs domain.Classifier
	Cfg   Config
}

// New constructs the collector service
func New(src domain.Source, langs domain.Classifier, cfg Config) *Service {
	if src == nil {
		panic("collect.Service requires a non nil Source")
	}
	if langs == nil {
		panic("collect.Service requires a non nil Classifier")
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = 10
	}
	return &Service{Src: src, Langs: langs, Cfg: cfg}
}

// Run streams rows until SampleSize records in the requested languages are found
// or the source is exhausted
func (s *Service) Run(ctx context.Context, req domain.Request) (res domain.Result, err error) {
	log := logger.C(ctx).With().Str("component", "collect").Logger()

	// languages first: nothing is opened for a bad request
	if err := s.Langs.Validate(req.Languages); err != nil {
		return res, err
	}
	if err := validate.Struct(req); err != nil {
		return res, err
	}

	stream, err := s.Src.Open(ctx)
	if err != nil {
		return res, perr.WithOp(err, "collect.open")
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil && err == nil {
			err = perr.Wrap(cerr, perr.ErrorCodeIO, "close source")
		}
	}()

	res.PerLanguage = make(map[string]int, len(req.Languages))
	res.Records = make([]dataset.CodeRecord, 0, min(req.SampleSize, 1024))

	log.Info().
		Strs("languages", req.Languages).
		Strs("extensions", s.Langs.Extensions(req.Languages...)).
		Int("sample_size", req.SampleSize).
		Msg("collect: streaming")

	for len(res.Records) < req.SampleSize {
		if err := ctx.Err(); err != nil {
			return res, perr.Wrap(err, perr.ErrorCodeUnavailable, "collect canceled")
		}

		row, nerr := stream.Next()
		if errors.Is(nerr, io.EOF) {
			break
		}
		if nerr != nil {
			return res, perr.Wrapf(nerr, perr.ErrorCodeIO, "read row %d", res.RowsChecked+1)
		}
		res.RowsChecked++

		if row.FilePath == nil {
			continue
		}
		lang, ok := s.Langs.Classify(*row.FilePath)
		if !ok || !slices.Contains(req.Languages, lang) {
			continue
		}

		res.Records = append(res.Records, toRecord(row))
		res.PerLanguage[lang]++

		if n := len(res.Records); n%s.Cfg.ProgressEvery == 0 {
			log.Info().
				Int("collected", n).
				Int("target", req.SampleSize).
				Int64("rows_checked", res.RowsChecked).
				Msg("collect: progress")
		}
	}

	log.Info().
		Int("collected", len(res.Records)).
		Int64("rows_checked", res.RowsChecked).
		Msg("collect: done")
	return res, nil
}

func toRecord(row domain.Row) dataset.CodeRecord {
	rec := dataset.CodeRecord{
		RepoID:   pstrings.Deref(row.RepoID, "unknown"),
		FilePath: *row.FilePath,
		Content:  pstrings.Deref(row.Content, ""),
	}
	if row.Size != nil {
		rec.Size = int(*row.Size)
	} else {
		rec.Size = len(rec.Content)
	}
	return rec
}

// Package ingest holds adapter shims for the training driver's ports
package ingest

import (
	"context"
	"errors"
	"io"
	"strings"

	"codecorpus/internal/adapters/hub"
	"codecorpus/internal/adapters/trainer"
	"codecorpus/internal/core/dataset"
	perr "codecorpus/internal/platform/errors"
	"codecorpus/internal/platform/logger"
	"codecorpus/internal/platform/store"
	"codecorpus/internal/services/train/domain"
)

const logEvery = 10000

// opener abstracts hub.Config.Dataset so tests can stub the hub
type opener func(ctx context.Context, id string) (*hub.Stream, error)

// loader implements domain.Loader over JSON files and hub datasets
type loader struct {
	files *store.Store
	open  opener
}

// NewLoader reads ".json" sources through the store and streams anything else from the hub
func NewLoader(files *store.Store, hc hub.Config) domain.Loader {
	return &loader{
		files: files,
		open: func(ctx context.Context, id string) (*hub.Stream, error) {
			return hc.Dataset(id, "default", "train").Open(ctx)
		},
	}
}

func (l *loader) Load(ctx context.Context, source string) ([]dataset.CodeRecord, error) {
	if strings.HasSuffix(strings.ToLower(source), ".json") {
		var recs []dataset.CodeRecord
		if err := l.files.ReadJSON(ctx, source, &recs); err != nil {
			return nil, err
		}
		return recs, nil
	}
	return l.stream(ctx, source)
}

func (l *loader) stream(ctx context.Context, id string) (recs []dataset.CodeRecord, err error) {
	st, err := l.open(ctx, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil && err == nil {
			err = perr.Wrap(cerr, perr.ErrorCodeIO, "close hub stream")
		}
	}()

	log := logger.C(ctx)
	for {
		row, nerr := st.Next()
		if errors.Is(nerr, io.EOF) {
			return recs, nil
		}
		if nerr != nil {
			return nil, perr.Wrapf(nerr, perr.ErrorCodeIO, "read %s row %d", id, len(recs)+1)
		}
		recs = append(recs, row.Record())
		if len(recs)%logEvery == 0 {
			log.Info().Str("dataset", id).Int("rows", len(recs)).Msg("train: streaming")
		}
	}
}

// NewTrainerFactory builds trainer.Exec processes logging under the trainer component
func NewTrainerFactory() domain.TrainerFactory {
	return func(c domain.TrainerConfig) domain.Trainer {
		return &trainer.Exec{Command: c.Command, Dir: c.Dir, Env: c.Env, Log: logger.Named("trainer")}
	}
}

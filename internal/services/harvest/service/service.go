// Package service provides the local harvester implementation
package service

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"codecorpus/internal/core/dataset"
	perr "codecorpus/internal/platform/errors"
	"codecorpus/internal/platform/logger"
	"codecorpus/internal/platform/validate"
	"codecorpus/internal/services/harvest/domain"

	"golang.org/x/text/encoding"
)

// Config holds harvester settings
type Config struct {
	FallbackEncoding string // "" -> cp949
	SkipHidden       bool   // skip dot files and dot directories below the root
}

// Service turns a local source tree into token-annotated code records
type Service struct {
	Tok Tokenizer
	Cfg Config

	fallback encoding.Encoding
}

// Tokenizer is re-exported so callers need not import the domain package
type Tokenizer = domain.Tokenizer

// New constructs the harvester; it fails on an unknown fallback encoding
func New(tok Tokenizer, cfg Config) (*Service, error) {
	if tok == nil {
		panic("harvest.Service requires a non nil Tokenizer")
	}
	if cfg.FallbackEncoding == "" {
		cfg.FallbackEncoding = DefaultFallback
	}
	enc, err := Encoding(cfg.FallbackEncoding)
	if err != nil {
		return nil, err
	}
	return &Service{Tok: tok, Cfg: cfg, fallback: enc}, nil
}

// Run walks InputDir in lexical order and emits one record per regular file
func (s *Service) Run(ctx context.Context, req domain.Request) (domain.Result, error) {
	var res domain.Result
	if err := validate.Struct(req); err != nil {
		return res, err
	}
	log := logger.C(ctx).With().Str("component", "harvest").Logger()

	info, err := os.Stat(req.InputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return res, perr.WithField(perr.NotFoundf("input dir %s does not exist", req.InputDir), "input_dir")
		}
		return res, perr.Wrap(err, perr.ErrorCodeIO, "stat input dir")
	}
	if !info.IsDir() {
		return res, perr.WithField(perr.InvalidArgf("%s is not a directory", req.InputDir), "input_dir")
	}

	walkErr := filepath.WalkDir(req.InputDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeIO, "walk %s", p)
		}
		if cerr := ctx.Err(); cerr != nil {
			return perr.Wrap(cerr, perr.ErrorCodeUnavailable, "harvest canceled")
		}
		if s.Cfg.SkipHidden && p != req.InputDir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(req.InputDir, p)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeIO, "relative path of %s", p)
		}
		rel = filepath.ToSlash(rel)

		rec, fellBack, err := s.harvestFile(ctx, p, rel, req.RepoID)
		if err != nil {
			return err
		}
		if fellBack {
			res.Fallback++
			log.Debug().Str("file", rel).Str("encoding", s.Cfg.FallbackEncoding).Msg("harvest: fallback decode")
		}
		res.Records = append(res.Records, rec)
		return nil
	})
	if walkErr != nil {
		return res, walkErr
	}

	log.Info().
		Int("files", len(res.Records)).
		Int("fallback_decoded", res.Fallback).
		Str("repo_id", req.RepoID).
		Msg("harvest: done")
	return res, nil
}

func (s *Service) harvestFile(ctx context.Context, p, rel, repoID string) (dataset.CodeRecord, bool, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return dataset.CodeRecord{}, false, perr.WithField(perr.Wrapf(err, perr.ErrorCodeIO, "read %s", rel), "file_path")
	}
	text, fellBack, err := decode(b, s.fallback, s.Cfg.FallbackEncoding)
	if err != nil {
		return dataset.CodeRecord{}, fellBack, perr.WithField(perr.Wrapf(err, perr.ErrorCodeDecode, "%s", rel), "file_path")
	}
	n, err := s.Tok.Count(ctx, text)
	if err != nil {
		return dataset.CodeRecord{}, fellBack, perr.WithOp(err, "tokenize "+rel)
	}
	if n < 0 {
		return dataset.CodeRecord{}, fellBack, perr.Upstreamf("tokenizer returned %d for %s", n, rel)
	}
	return dataset.CodeRecord{
		RepoID:    repoID,
		FilePath:  rel,
		Content:   text,
		Size:      len(b),
		TokenSize: dataset.IntPtr(n),
	}, fellBack, nil
}

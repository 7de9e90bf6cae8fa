package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	perr "codecorpus/internal/platform/errors"
	"codecorpus/internal/platform/store"
	"codecorpus/internal/platform/validate"
	"codecorpus/internal/services/train/domain"

	"gopkg.in/yaml.v3"
)

// DefaultDataDir is where the formatted dataset and job file go when data.output_dir is unset
const DefaultDataDir = "data/cpt"

// LoadFile reads the YAML config at uri, applies overrides and validates it
func LoadFile(ctx context.Context, st *store.Store, uri string, sets []string) (domain.Config, error) {
	rc, err := st.Reader(ctx, uri)
	if err != nil {
		return domain.Config{}, err
	}
	defer func() { _ = rc.Close() }()
	cfg, err := Load(rc, sets)
	if err != nil {
		return cfg, perr.WithOp(err, "load "+uri)
	}
	return cfg, nil
}

// Load decodes YAML, applies dotted section.key=value overrides and validates the result.
// Override values are parsed as YAML scalars; unknown keys are rejected.
func Load(r io.Reader, sets []string) (domain.Config, error) {
	var cfg domain.Config

	tree := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&tree); err != nil && !errors.Is(err, io.EOF) {
		return cfg, perr.Wrap(err, perr.ErrorCodeDecode, "parse config yaml")
	}
	for _, s := range sets {
		if err := applySet(tree, s); err != nil {
			return cfg, err
		}
	}

	b, err := yaml.Marshal(tree)
	if err != nil {
		return cfg, perr.Wrap(err, perr.ErrorCodeDecode, "re-encode config")
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, perr.Wrap(err, perr.ErrorCodeValidation, "config")
	}

	if cfg.Data.OutputDir == "" {
		cfg.Data.OutputDir = DefaultDataDir
	}
	if err := validate.Struct(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applySet writes one "a.b.c=value" override into tree, creating sections as needed
func applySet(tree map[string]any, set string) error {
	key, raw, ok := strings.Cut(set, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return perr.WithField(perr.InvalidArgf("override %q is not key=value", set), "set")
	}
	parts := strings.Split(key, ".")
	for _, p := range parts {
		if p == "" {
			return perr.WithField(perr.InvalidArgf("override key %q has an empty segment", key), "set")
		}
	}

	var val any
	if err := yaml.Unmarshal([]byte(raw), &val); err != nil {
		val = raw
	}

	node := tree
	for _, p := range parts[:len(parts)-1] {
		next, exists := node[p]
		if !exists || next == nil {
			m := map[string]any{}
			node[p] = m
			node = m
			continue
		}
		m, ok := next.(map[string]any)
		if !ok {
			return perr.WithField(perr.InvalidArgf("override %q: %s is not a section", key, p), "set")
		}
		node = m
	}
	node[parts[len(parts)-1]] = val
	return nil
}

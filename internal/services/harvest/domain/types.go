// Package domain holds the harvester's request and result shapes
package domain

import (
	"context"

	"codecorpus/internal/core/dataset"
)

// Request names the tree to walk and the repo id stamped on every record
type Request struct {
	InputDir string `json:"input_dir" validate:"required"`
	RepoID   string `json:"repo_id"   validate:"required"`
}

// Result is the outcome of one harvest
type Result struct {
	Records  []dataset.CodeRecord
	Fallback int // files decoded with the fallback encoding
}

// RunnerPort is the harvester surface driven by the binary
type RunnerPort interface {
	Run(ctx context.Context, req Request) (Result, error)
}

// Tokenizer counts tokens in text
type Tokenizer interface {
	Count(ctx context.Context, text string) (int, error)
}

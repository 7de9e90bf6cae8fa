// Package domain holds the prompt-pair generator's ports and shapes
package domain

import (
	"context"

	"codecorpus/internal/core/dataset"
	"codecorpus/internal/core/strategy"
)

// Chat sends one system+user exchange and returns the reply text
type Chat interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Classifier maps a file path to a language name
type Classifier interface {
	Classify(path string) (string, bool)
}

// Request is one generation run over already loaded records
type Request struct {
	Records             []dataset.CodeRecord `json:"-"`
	StrategiesPerRecord int                  `json:"strategies_per_code" validate:"min=1"`
	SampleSize          int                  `json:"sample_size"         validate:"min=0"` // 0 = all records
	SkipErrors          bool                 `json:"skip_errors"`
}

// Result is the outcome of applying one strategy to one record
type Result struct {
	Strategy strategy.Kind
	Pair     dataset.PromptPair
	Err      error
}

// RunnerPort is the generator surface driven by the binary
type RunnerPort interface {
	Run(ctx context.Context, req Request) ([]dataset.PromptPair, error)
}

// Package domain holds the collector's request, result and row shapes
package domain

import "codecorpus/internal/core/dataset"

// DefaultDataset is the hub dataset sampled when none is given
const DefaultDataset = "nick007x/github-code-2025"

// Row is one source row; every field is optional
type Row struct {
	RepoID   *string
	FilePath *string
	Content  *string
	Size     *int64
}

// Request selects which languages to keep and how many records to return
type Request struct {
	Languages  []string `json:"languages"   validate:"required"`
	SampleSize int      `json:"sample_size" validate:"min=1"`
}

// Result is the outcome of one collection run
type Result struct {
	Records     []dataset.CodeRecord
	RowsChecked int64
	PerLanguage map[string]int
}

// Short reports whether the source ran out before the target was reached
func (r Result) Short(target int) bool { return len(r.Records) < target }

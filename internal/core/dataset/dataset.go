// Package dataset defines the records every pipeline reads and writes
package dataset

import (
	"sort"

	perr "codecorpus/internal/platform/errors"
)

// CodeRecord is one source file; immutable once written
// TokenSize is set only by the harvester
type CodeRecord struct {
	RepoID    string `json:"repo_id"`
	FilePath  string `json:"file_path"`
	Content   string `json:"content"`
	Size      int    `json:"size"`
	TokenSize *int   `json:"token_size,omitempty"`
}

// PairMeta ties a pair back to its strategy and source file
type PairMeta struct {
	Strategy string `json:"strategy"`
	RepoID   string `json:"repo_id"`
	FilePath string `json:"file_path"`
}

// PromptPair is one instruction/output example
type PromptPair struct {
	Instruction string   `json:"instruction"`
	Output      string   `json:"output"`
	Metadata    PairMeta `json:"metadata"`
}

// Count is a named tally used for per-language and per-strategy breakdowns
type Count struct {
	Name  string
	Count int
}

// SortedCounts flattens a tally into name order
func SortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Name: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CountByStrategy tallies pairs per strategy, sorted by strategy name
func CountByStrategy(pairs []PromptPair) []Count {
	m := make(map[string]int)
	for _, p := range pairs {
		m[p.Metadata.Strategy]++
	}
	return SortedCounts(m)
}

// TokenStats summarises token counts over harvested records
type TokenStats struct {
	Count   int     `json:"count"`
	Min     int     `json:"min"`
	MinPath string  `json:"min_path"`
	Max     int     `json:"max"`
	MaxPath string  `json:"max_path"`
	Mean    float64 `json:"mean"`
}

// ComputeTokenStats returns min and max (first occurrence wins) and the mean token count
// records without a token count are treated as zero tokens
func ComputeTokenStats(records []CodeRecord) (TokenStats, error) {
	if len(records) == 0 {
		return TokenStats{}, perr.EmptyInputf("token statistics over zero records")
	}
	var (
		st  TokenStats
		sum int64
	)
	for i, r := range records {
		n := 0
		if r.TokenSize != nil {
			n = *r.TokenSize
		}
		sum += int64(n)
		if i == 0 || n < st.Min {
			st.Min, st.MinPath = n, r.FilePath
		}
		if i == 0 || n > st.Max {
			st.Max, st.MaxPath = n, r.FilePath
		}
	}
	st.Count = len(records)
	st.Mean = float64(sum) / float64(len(records))
	return st, nil
}

// IntPtr returns a pointer to n, for TokenSize
func IntPtr(n int) *int { return &n }

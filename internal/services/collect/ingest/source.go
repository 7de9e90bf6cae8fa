// Package ingest holds adapter shims for collector ports
package ingest

import (
	"context"

	"codecorpus/internal/adapters/hub"
	"codecorpus/internal/platform/logger"
	"codecorpus/internal/services/collect/domain"
)

// source implements domain.Source over a hub dataset split
type source struct {
	ds hub.Dataset
}

// NewSource adapts a hub dataset to the collector's Source port
func NewSource(ds hub.Dataset) domain.Source { return &source{ds: ds} }

func (s *source) Open(ctx context.Context) (domain.RowStream, error) {
	st, err := s.ds.Open(ctx)
	if err != nil {
		return nil, err
	}
	return &rows{st: st, fetch: s.ds.Fetcher}, nil
}

// cacheStats is implemented by hub.CachedFetcher
type cacheStats interface {
	Stats() (hits, misses int64)
}

// rows translates hub rows into domain rows
type rows struct {
	st    *hub.Stream
	fetch hub.ShardFetcher
}

func (r *rows) Next() (domain.Row, error) {
	row, err := r.st.Next()
	if err != nil {
		return domain.Row{}, err
	}
	return domain.Row{RepoID: row.RepoID, FilePath: row.FilePath, Content: row.Content, Size: row.Size}, nil
}

// Close releases the stream and reports what the run pulled from the hub
func (r *rows) Close() error {
	ev := logger.Named("collect").Info().Int64("rows_read", r.st.Rows())
	if cs, ok := r.fetch.(cacheStats); ok {
		hits, misses := cs.Stats()
		ev = ev.Int64("cache_hits", hits).Int64("cache_misses", misses)
	}
	ev.Msg("collect: source closed")
	return r.st.Close()
}

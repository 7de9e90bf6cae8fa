package hub

import (
	"context"
	"errors"
	"fmt"
	"io"

	"codecorpus/internal/core/dataset"
	perr "codecorpus/internal/platform/errors"
	"codecorpus/internal/platform/logger"
	pstrings "codecorpus/internal/platform/strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/schema"
	"github.com/xitongsys/parquet-go/source"
)

const defaultBatch = 128

// Row is one dataset row; any field may be missing or null
type Row struct {
	RepoID   *string
	FilePath *string
	Content  *string
	Size     *int64
}

// Columns names the dataset columns mapped onto Row
type Columns struct {
	RepoID   string
	FilePath string
	Content  string
	Size     string
}

// DefaultColumns matches the github-code exports
var DefaultColumns = Columns{RepoID: "repo_id", FilePath: "file_path", Content: "content", Size: "size"}

// ShardFetcher resolves a shard URL to a local parquet file
type ShardFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Stream reads rows shard by shard; only one shard is open at a time
// ctx is captured at creation and bounds every fetch
type Stream struct {
	ctx   context.Context
	fetch ShardFetcher
	urls  []string
	cols  Columns
	batch int64

	next int // next shard index
	pf   source.ParquetFile
	pr   *reader.ParquetReader
	idx  map[string]int64 // column name -> leaf index in the open shard
	left int64            // unread rows in the open shard

	buf  map[string][]any
	pos  int
	size int

	rows   int64
	err    error
	closed bool
}

// StreamOption configures a Stream
type StreamOption func(*Stream)

// WithColumns overrides the column mapping
func WithColumns(c Columns) StreamOption { return func(s *Stream) { s.cols = c } }

// WithBatch sets how many rows are read per column at once
func WithBatch(n int) StreamOption {
	return func(s *Stream) {
		if n > 0 {
			s.batch = int64(n)
		}
	}
}

// NewStream builds a lazy stream over urls; nothing is fetched until Next
func NewStream(ctx context.Context, fetch ShardFetcher, urls []string, opts ...StreamOption) *Stream {
	s := &Stream{ctx: ctx, fetch: fetch, urls: urls, cols: DefaultColumns, batch: defaultBatch}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Next returns the next row or io.EOF after the last shard
func (s *Stream) Next() (Row, error) {
	if s.err != nil {
		return Row{}, s.err
	}
	if s.closed {
		return Row{}, perr.Internalf("hub: stream closed")
	}
	for s.pos >= s.size {
		if err := s.ctx.Err(); err != nil {
			s.err = err
			return Row{}, err
		}
		if err := s.fill(); err != nil {
			s.err = err
			return Row{}, err
		}
	}
	r := Row{
		RepoID:   asString(s.value(s.cols.RepoID)),
		FilePath: asString(s.value(s.cols.FilePath)),
		Content:  asString(s.value(s.cols.Content)),
		Size:     asInt(s.value(s.cols.Size)),
	}
	s.pos++
	s.rows++
	return r, nil
}

// Rows returns how many rows Next has produced
func (s *Stream) Rows() int64 { return s.rows }

// Close releases the open shard; safe to call more than once
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.closeShard()
}

func (s *Stream) value(col string) any {
	vals, ok := s.buf[col]
	if !ok || s.pos >= len(vals) {
		return nil
	}
	return vals[s.pos]
}

// fill loads the next batch, opening the next shard when the current one is drained
func (s *Stream) fill() error {
	if s.pr == nil || s.left == 0 {
		if err := s.closeShard(); err != nil {
			return err
		}
		if s.next >= len(s.urls) {
			return io.EOF
		}
		if err := s.openShard(s.urls[s.next]); err != nil {
			return err
		}
		s.next++
		if s.left == 0 {
			s.size, s.pos = 0, 0
			return nil
		}
	}

	n := min(s.batch, s.left)
	buf := make(map[string][]any, 4)
	for _, col := range []string{s.cols.RepoID, s.cols.FilePath, s.cols.Content, s.cols.Size} {
		i, ok := s.idx[col]
		if !ok {
			continue
		}
		vals, _, _, err := s.pr.ReadColumnByIndex(i, n)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeDecode, "hub: read column %s", col)
		}
		buf[col] = vals
	}
	s.buf, s.pos, s.size = buf, 0, int(n)
	s.left -= n
	return nil
}

func (s *Stream) openShard(url string) error {
	path, err := s.fetch.Fetch(s.ctx, url)
	if err != nil {
		return err
	}
	pf, err := local.NewLocalFileReader(path)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "hub: open shard %s", path)
	}
	pr, err := reader.NewParquetColumnReader(pf, 1)
	if err != nil {
		_ = pf.Close()
		return perr.Wrapf(err, perr.ErrorCodeDecode, "hub: parquet footer %s", url)
	}
	s.pf, s.pr = pf, pr
	s.idx = leafColumns(pr.SchemaHandler)
	s.left = pr.GetNumRows()

	missing := 0
	for _, col := range []string{s.cols.FilePath, s.cols.Content} {
		if _, ok := s.idx[col]; !ok {
			missing++
		}
	}
	l := logger.Named("hub")
	l.Debug().Str("shard", url).Int64("rows", s.left).Int("columns", len(s.idx)).Msg("hub: shard opened")
	if missing > 0 {
		l.Warn().Str("shard", url).Msg("hub: shard lacks file_path or content columns")
	}
	return nil
}

func (s *Stream) closeShard() error {
	var errs []error
	if s.pr != nil {
		s.pr.ReadStop()
		s.pr = nil
	}
	if s.pf != nil {
		if err := s.pf.Close(); err != nil {
			errs = append(errs, err)
		}
		s.pf = nil
	}
	s.buf, s.pos, s.size, s.left = nil, 0, 0, 0
	if err := errors.Join(errs...); err != nil {
		return perr.Wrap(err, perr.ErrorCodeIO, "hub: close shard")
	}
	return nil
}

// leafColumns maps top-level leaf columns to their leaf index (the order ReadColumnByIndex uses).
// Names are the external ones from the file; the reader renames the footer schema to Go-style
// identifiers (file_path -> File_path), so those are never used for lookup.
func leafColumns(sh *schema.SchemaHandler) map[string]int64 {
	out := make(map[string]int64)
	elems := sh.SchemaElements
	if len(elems) < 2 {
		return out
	}
	var leaf int64
	var walk func(i, depth int) int
	walk = func(i, depth int) int {
		if i >= len(elems) {
			return i
		}
		kids := int(elems[i].GetNumChildren())
		if kids == 0 {
			if depth == 1 {
				out[sh.GetExName(i)] = leaf
			}
			leaf++
			return i + 1
		}
		j := i + 1
		for range kids {
			j = walk(j, depth+1)
		}
		return j
	}
	walk(0, 0)
	return out
}

func asString(v any) *string {
	switch t := v.(type) {
	case string:
		return &t
	case []byte:
		s := string(t)
		return &s
	default:
		return nil
	}
}

func asInt(v any) *int64 {
	var n int64
	switch t := v.(type) {
	case int64:
		n = t
	case int32:
		n = int64(t)
	case int:
		n = int64(t)
	case float64:
		n = int64(t)
	case string:
		if _, err := fmt.Sscan(t, &n); err != nil {
			return nil
		}
	default:
		return nil
	}
	return &n
}

// Record converts a row with the usual fallbacks: repo "unknown", empty strings, size in bytes
func (r Row) Record() dataset.CodeRecord {
	rec := dataset.CodeRecord{
		RepoID:   pstrings.Deref(r.RepoID, "unknown"),
		FilePath: pstrings.Deref(r.FilePath, ""),
		Content:  pstrings.Deref(r.Content, ""),
	}
	rec.Size = len(rec.Content)
	if r.Size != nil {
		rec.Size = int(*r.Size)
	}
	return rec
}

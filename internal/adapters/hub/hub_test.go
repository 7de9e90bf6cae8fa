package hub

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	perr "codecorpus/internal/platform/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

type shardRow struct {
	RepoID   *string `parquet:"name=repo_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	FilePath *string `parquet:"name=file_path, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Content  *string `parquet:"name=content, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Size     *int64  `parquet:"name=size, type=INT64, repetitiontype=OPTIONAL"`
	License  string  `parquet:"name=license, type=BYTE_ARRAY, convertedtype=UTF8"`
}

func sp(s string) *string { return &s }
func ip(n int64) *int64   { return &n }

func writeShard(t *testing.T, path string, rows []shardRow) {
	t.Helper()
	fw, err := local.NewLocalFileWriter(path)
	require.NoError(t, err)
	pw, err := writer.NewParquetWriter(fw, new(shardRow), 1)
	require.NoError(t, err)
	for _, r := range rows {
		require.NoError(t, pw.Write(r))
	}
	require.NoError(t, pw.WriteStop())
	require.NoError(t, fw.Close())
}

func TestLeafColumns_UseFileNames(t *testing.T) {
	p := filepath.Join(t.TempDir(), "s.parquet")
	writeShard(t, p, []shardRow{{FilePath: sp("a.py")}})

	pf, err := local.NewLocalFileReader(p)
	require.NoError(t, err)
	defer func() { _ = pf.Close() }()
	pr, err := reader.NewParquetColumnReader(pf, 1)
	require.NoError(t, err)
	defer pr.ReadStop()

	assert.Equal(t, map[string]int64{
		"repo_id":   0,
		"file_path": 1,
		"content":   2,
		"size":      3,
		"license":   4,
	}, leafColumns(pr.SchemaHandler))
}

// fileFetcher serves shards straight from disk
type fileFetcher struct{ calls int }

func (f *fileFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.calls++
	return url, nil
}

func TestListShards(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/api/datasets/nick007x/github-code-2025/parquet/default/train", r.URL.Path)
		fmt.Fprint(w, `["https://x/0.parquet","https://x/1.parquet"]`)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL + "/", Token: "tok", RPS: 100})
	urls, err := c.ListShards(context.Background(), "nick007x/github-code-2025", "default", "train")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x/0.parquet", "https://x/1.parquet"}, urls)
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestListShards_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   perr.ErrorCode
	}{
		{"rate limited", http.StatusTooManyRequests, "slow", perr.ErrorCodeTooManyRequests},
		{"server error", http.StatusBadGateway, "", perr.ErrorCodeUnavailable},
		{"missing dataset", http.StatusNotFound, "nope", perr.ErrorCodeNotFound},
		{"forbidden", http.StatusForbidden, "gated", perr.ErrorCodeUpstream},
		{"empty list", http.StatusOK, "[]", perr.ErrorCodeNotFound},
		{"bad json", http.StatusOK, "{", perr.ErrorCodeJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewClient(Options{BaseURL: srv.URL, RPS: 100}).ListShards(context.Background(), "a/b", "default", "train")
			require.Error(t, err)
			assert.Equal(t, tt.code, perr.CodeOf(err), err.Error())
		})
	}
}

func TestCachedFetcher_HitMissAndMeta(t *testing.T) {
	var served atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		served.Add(1)
		w.Header().Set("ETag", `"v1"`)
		fmt.Fprint(w, "PAR1-bytes")
	}))
	defer srv.Close()

	dir := t.TempDir()
	client := NewClient(Options{BaseURL: srv.URL, RPS: 100})
	f := NewCachedFetcher(dir, client)
	url := srv.URL + "/shard-0.parquet"

	p1, err := f.Fetch(context.Background(), url)
	require.NoError(t, err)
	p2, err := f.Fetch(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
	assert.Equal(t, int32(1), served.Load())

	hits, misses := f.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)

	b, err := os.ReadFile(p1)
	require.NoError(t, err)
	assert.Equal(t, "PAR1-bytes", string(b))

	meta, err := loadMeta(p1 + ".meta")
	require.NoError(t, err)
	assert.Equal(t, `"v1"`, meta.ETag)
	assert.Equal(t, int64(10), meta.Size)
	assert.Equal(t, url, meta.URL)

	_, err = os.Stat(p1 + ".part")
	assert.True(t, os.IsNotExist(err), "no .part left behind")

	rv := NewCachedFetcher(dir, client, WithRevalidate(true))
	p3, err := rv.Fetch(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, p1, p3)
	assert.Equal(t, int32(1), served.Load(), "304 serves the cached copy")
}

func TestCachedFetcher_Retention(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "0123456789")
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := NewCachedFetcher(dir, NewClient(Options{BaseURL: srv.URL, RPS: 100}), WithRetention(15))
	first, err := f.Fetch(context.Background(), srv.URL+"/a")
	require.NoError(t, err)
	second, err := f.Fetch(context.Background(), srv.URL+"/b")
	require.NoError(t, err)

	_, err = os.Stat(second)
	assert.NoError(t, err, "latest shard kept")
	_, err = os.Stat(first)
	assert.True(t, os.IsNotExist(err), "oldest shard evicted")
}

func TestStream_AcrossShards(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.parquet")
	b := filepath.Join(dir, "b.parquet")
	empty := filepath.Join(dir, "empty.parquet")
	writeShard(t, a, []shardRow{
		{RepoID: sp("acme/x"), FilePath: sp("main.py"), Content: sp("print(1)"), Size: ip(8), License: "mit"},
		{FilePath: sp("lib.go"), Content: sp("package lib")},
		{RepoID: sp("acme/y"), Content: sp("no path")},
	})
	writeShard(t, empty, nil)
	writeShard(t, b, []shardRow{
		{RepoID: sp("acme/z"), FilePath: sp("z.rs"), Content: sp("fn main(){}"), Size: ip(11)},
	})

	fetch := &fileFetcher{}
	s := NewStream(context.Background(), fetch, []string{a, empty, b}, WithBatch(2))
	defer func() { _ = s.Close() }()

	var rows []Row
	for {
		r, err := s.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		rows = append(rows, r)
	}
	require.Len(t, rows, 4)
	assert.Equal(t, int64(4), s.Rows())
	assert.Equal(t, 3, fetch.calls)

	assert.Equal(t, "acme/x", *rows[0].RepoID)
	assert.Equal(t, "main.py", *rows[0].FilePath)
	assert.Equal(t, int64(8), *rows[0].Size)

	assert.Nil(t, rows[1].RepoID)
	assert.Nil(t, rows[1].Size)
	assert.Equal(t, "package lib", *rows[1].Content)

	assert.Nil(t, rows[2].FilePath)
	assert.Equal(t, "z.rs", *rows[3].FilePath)

	_, err := s.Next()
	assert.Equal(t, io.EOF, err, "EOF is sticky")

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestStream_LazyAndClosedEarly(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.parquet")
	writeShard(t, a, []shardRow{{FilePath: sp("a.py")}, {FilePath: sp("b.py")}})

	fetch := &fileFetcher{}
	s := NewStream(context.Background(), fetch, []string{a, a})
	assert.Equal(t, 0, fetch.calls, "nothing fetched before Next")

	_, err := s.Next()
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.Nil(t, s.pr, "reader released")
	assert.Nil(t, s.pf, "file released")

	_, err = s.Next()
	assert.Error(t, err)
}

func TestStream_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewStream(ctx, &fileFetcher{}, []string{"unused"})
	_, err := s.Next()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDataset_Open(t *testing.T) {
	dir := t.TempDir()
	shard := filepath.Join(dir, "0.parquet")
	writeShard(t, shard, []shardRow{{FilePath: sp("x.py"), Content: sp("x = 1")}})
	body, err := os.ReadFile(shard)
	require.NoError(t, err)

	mux := http.NewServeMux()
	var base string
	mux.HandleFunc("/api/datasets/o/n/parquet/default/train", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `[%q]`, base+"/files/0.parquet")
	})
	mux.HandleFunc("/files/0.parquet", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(body)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	base = srv.URL

	cfg := Config{BaseURL: srv.URL, CacheDir: t.TempDir(), RPS: 100}
	s, err := cfg.Dataset("o/n", "default", "train").Open(context.Background())
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	r, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "x.py", *r.FilePath)
	_, err = s.Next()
	assert.Equal(t, io.EOF, err)
}

func TestRow_Record(t *testing.T) {
	n := int64(42)
	full := Row{RepoID: sp("o/r"), FilePath: sp("a.go"), Content: sp("package a"), Size: &n}.Record()
	assert.Equal(t, "o/r", full.RepoID)
	assert.Equal(t, 42, full.Size)

	bare := Row{FilePath: sp("b.go"), Content: sp("package b")}.Record()
	assert.Equal(t, "unknown", bare.RepoID)
	assert.Equal(t, len("package b"), bare.Size)
	assert.Nil(t, bare.TokenSize)
}

package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"

	"codecorpus/internal/adapters/hub"
	"codecorpus/internal/core/langs"
	"codecorpus/internal/services/collect/domain"
	"codecorpus/internal/services/collect/service"
)

type codeRow struct {
	RepoID   *string `parquet:"name=repo_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	FilePath *string `parquet:"name=file_path, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Content  *string `parquet:"name=content, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Size     *int64  `parquet:"name=size, type=INT64, repetitiontype=OPTIONAL"`
}

func str(s string) *string { return &s }

// shardBytes encodes rows as a parquet file the way the hub export does
func shardBytes(t *testing.T, rows []codeRow) []byte {
	t.Helper()
	p := filepath.Join(t.TempDir(), "0.parquet")
	fw, err := local.NewLocalFileWriter(p)
	require.NoError(t, err)
	pw, err := writer.NewParquetWriter(fw, new(codeRow), 1)
	require.NoError(t, err)
	for _, r := range rows {
		require.NoError(t, pw.Write(r))
	}
	require.NoError(t, pw.WriteStop())
	require.NoError(t, fw.Close())
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	return b
}

func serveDataset(t *testing.T, shard []byte) hub.Config {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	mux.HandleFunc("/api/datasets/org/code/parquet/default/train", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `[%q]`, srv.URL+"/files/0.parquet")
	})
	mux.HandleFunc("/files/0.parquet", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(shard)
	})
	return hub.Config{BaseURL: srv.URL, CacheDir: t.TempDir(), RPS: 100}
}

func TestCollect_OverParquetShard(t *testing.T) {
	shard := shardBytes(t, []codeRow{
		{RepoID: str("acme/a"), FilePath: str("a.py"), Content: str("print('a')")},
		{RepoID: str("acme/b"), FilePath: str("b.go"), Content: str("package b")},
		{RepoID: str("acme/c"), FilePath: str("c.py"), Content: str("x = 1")},
		{RepoID: str("acme/d"), FilePath: str("d.md"), Content: str("# d")},
		{RepoID: str("acme/e"), FilePath: str("e.rs"), Content: str("fn main() {}")},
	})
	cfg := serveDataset(t, shard)
	src := NewSource(cfg.Dataset("org/code", "default", "train"))

	res, err := service.New(src, langs.Default(), service.Config{}).
		Run(context.Background(), domain.Request{Languages: []string{"python"}, SampleSize: 2})
	require.NoError(t, err)

	require.Len(t, res.Records, 2)
	assert.Equal(t, "a.py", res.Records[0].FilePath)
	assert.Equal(t, "acme/a", res.Records[0].RepoID)
	assert.Equal(t, "print('a')", res.Records[0].Content)
	assert.Equal(t, len("print('a')"), res.Records[0].Size)
	assert.Equal(t, "c.py", res.Records[1].FilePath)
	assert.Equal(t, int64(3), res.RowsChecked)
	assert.Equal(t, 2, res.PerLanguage["python"])
}

func TestSource_RowsCarryColumns(t *testing.T) {
	n := int64(99)
	shard := shardBytes(t, []codeRow{{FilePath: str("x.c"), Content: str("int x;"), Size: &n}})
	cfg := serveDataset(t, shard)

	st, err := NewSource(cfg.Dataset("org/code", "default", "train")).Open(context.Background())
	require.NoError(t, err)
	row, err := st.Next()
	require.NoError(t, err)
	require.NoError(t, st.Close())

	require.NotNil(t, row.FilePath)
	require.NotNil(t, row.Size)
	assert.Equal(t, "x.c", *row.FilePath)
	assert.Equal(t, int64(99), *row.Size)
	assert.Nil(t, row.RepoID)
}

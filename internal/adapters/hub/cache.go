package hub

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	perr "codecorpus/internal/platform/errors"
	"codecorpus/internal/platform/logger"
)

const shardExt = ".parquet"

// CachedFetcher downloads shards into a local dir keyed by URL hash
// each shard has a .meta sidecar; downloads land in .part then rename
type CachedFetcher struct {
	dir            string
	client         *Client
	revalidate     bool
	retainMaxBytes int64

	hits   atomic.Int64
	misses atomic.Int64
}

// cacheMeta is a tiny sidecar json with fields we actually use
type cacheMeta struct {
	URL       string    `json:"url"`
	ETag      string    `json:"etag,omitempty"`
	Size      int64     `json:"size"`
	FetchedAt time.Time `json:"fetched_at"`
}

// CachedOption configures the fetcher
type CachedOption func(*CachedFetcher)

// WithRevalidate sends If-None-Match for cached shards and refreshes them on 200
func WithRevalidate(on bool) CachedOption {
	return func(c *CachedFetcher) { c.revalidate = on }
}

// WithRetention evicts the oldest shards once the cache exceeds maxBytes; zero disables it
func WithRetention(maxBytes int64) CachedOption {
	return func(c *CachedFetcher) { c.retainMaxBytes = maxBytes }
}

// NewCachedFetcher builds a fetcher over dir using client for downloads
func NewCachedFetcher(dir string, client *Client, opts ...CachedOption) *CachedFetcher {
	c := &CachedFetcher{dir: dir, client: client}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fetch returns the local path of the shard at url, downloading it on a miss
func (c *CachedFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeIO, "hub: cache dir %s", c.dir)
	}
	path := filepath.Join(c.dir, cacheKey(url)+shardExt)
	metaPath := path + ".meta"

	if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
		if !c.revalidate {
			c.hits.Add(1)
			return path, nil
		}
		var hdr http.Header
		if meta, err := loadMeta(metaPath); err == nil && meta.ETag != "" {
			hdr = http.Header{"If-None-Match": []string{meta.ETag}}
		}
		return c.download(ctx, url, path, metaPath, hdr)
	}
	return c.download(ctx, url, path, metaPath, nil)
}

// Stats returns cache hits and misses so far
func (c *CachedFetcher) Stats() (hits, misses int64) { return c.hits.Load(), c.misses.Load() }

func (c *CachedFetcher) download(ctx context.Context, url, path, metaPath string, hdr http.Header) (string, error) {
	resp, err := c.client.get(ctx, url, hdr)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotModified {
		c.hits.Add(1)
		return path, nil
	}
	c.misses.Add(1)

	n, err := writeAtomic(path, resp.Body)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeUnavailable) {
			return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "hub: download %s", url)
		}
		return "", err
	}

	log := logger.Named("hub")
	meta, _ := json.Marshal(cacheMeta{
		URL:       url,
		ETag:      strings.TrimSpace(resp.Header.Get("ETag")),
		Size:      n,
		FetchedAt: time.Now().UTC(),
	})
	if _, err := writeAtomic(metaPath, bytes.NewReader(meta)); err != nil {
		log.Warn().Err(err).Str("meta", metaPath).Msg("hub: meta sidecar not written")
	}
	log.Debug().Str("url", url).Int64("bytes", n).Msg("hub: shard cached")

	if evicted := c.evict(path); evicted > 0 {
		log.Debug().Int("evicted", evicted).Int64("max_bytes", c.retainMaxBytes).Msg("hub: cache trimmed")
	}
	return path, nil
}

// writeAtomic streams r into path through a .part sibling; a failed read is Unavailable, a failed write IO
func writeAtomic(path string, r io.Reader) (int64, error) {
	tmp := path + ".part"
	defer func() { _ = os.Remove(tmp) }()

	f, err := os.Create(tmp)
	if err != nil {
		return 0, perr.Wrapf(err, perr.ErrorCodeIO, "hub: create %s", tmp)
	}
	n, cpErr := io.Copy(f, r)
	if err := errors.Join(cpErr, f.Close()); err != nil {
		code := perr.ErrorCodeIO
		if cpErr != nil {
			code = perr.ErrorCodeUnavailable
		}
		return 0, perr.Wrapf(err, code, "hub: write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return 0, perr.Wrapf(err, perr.ErrorCodeIO, "hub: rename %s", tmp)
	}
	return n, nil
}

type cachedShard struct {
	path string
	size int64
	mod  time.Time
}

// evict removes the oldest shards (and their sidecars) until the cache fits the
// retention budget, never touching keep; it returns how many were removed
func (c *CachedFetcher) evict(keep string) int {
	if c.retainMaxBytes <= 0 {
		return 0
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0
	}
	var (
		shards []cachedShard
		total  int64
	)
	for _, e := range entries {
		if filepath.Ext(e.Name()) != shardExt {
			continue
		}
		if fi, err := e.Info(); err == nil && fi.Mode().IsRegular() {
			shards = append(shards, cachedShard{filepath.Join(c.dir, e.Name()), fi.Size(), fi.ModTime()})
			total += fi.Size()
		}
	}
	slices.SortFunc(shards, func(a, b cachedShard) int { return a.mod.Compare(b.mod) })

	removed := 0
	for _, sh := range shards {
		if total <= c.retainMaxBytes {
			break
		}
		if sh.path == keep {
			continue
		}
		_ = os.Remove(sh.path)
		_ = os.Remove(sh.path + ".meta")
		total -= sh.size
		removed++
	}
	return removed
}

func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:16])
}

func loadMeta(path string) (cacheMeta, error) {
	var m cacheMeta
	b, err := os.ReadFile(path)
	if err == nil {
		err = json.Unmarshal(b, &m)
	}
	return m, err
}

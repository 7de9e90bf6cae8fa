// Package hub streams rows of a Hugging Face dataset from its parquet export
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	perr "codecorpus/internal/platform/errors"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public hub
	DefaultBaseURL = "https://huggingface.co"
	maxErrBody     = 512
)

// Options configures a Client
type Options struct {
	BaseURL string
	Token   string
	RPS     float64
	Timeout time.Duration
}

// Client talks to the dataset hub; every request waits on one shared limiter
type Client struct {
	base    string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient builds a hub client; zero options fall back to the public hub, 5 rps and no timeout
func NewClient(o Options) *Client {
	base := strings.TrimRight(o.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	rps := o.RPS
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base:    base,
		token:   o.Token,
		http:    &http.Client{Timeout: o.Timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// ListShards returns the parquet shard URLs of one dataset config and split
func (c *Client) ListShards(ctx context.Context, dataset, config, split string) ([]string, error) {
	u := fmt.Sprintf("%s/api/datasets/%s/parquet/%s/%s",
		c.base, escapeID(dataset), url.PathEscape(config), url.PathEscape(split))

	resp, err := c.get(ctx, u, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var urls []string
	if err := json.NewDecoder(resp.Body).Decode(&urls); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "hub: decode shard list for %s", dataset)
	}
	if len(urls) == 0 {
		return nil, perr.NotFoundf("hub: dataset %s has no parquet shards for %s/%s", dataset, config, split)
	}
	return urls, nil
}

// get issues a paced GET and returns the response only for 2xx (and 304 when allowed via hdr)
// the caller owns the body
func (c *Client) get(ctx context.Context, u string, hdr http.Header) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "hub: rate limiter")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "hub: build request %s", u)
	}
	for k, vs := range hdr {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.token != "" && c.sameHost(req.URL) {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "hub: GET %s", u)
	}
	if resp.StatusCode/100 == 2 || resp.StatusCode == http.StatusNotModified {
		return resp, nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
	_ = resp.Body.Close()
	return nil, perr.FromStatus(resp.StatusCode, "hub: GET "+u, strings.TrimSpace(string(body)))
}

// sameHost keeps the token off redirects to third-party storage hosts
func (c *Client) sameHost(u *url.URL) bool {
	b, err := url.Parse(c.base)
	return err == nil && strings.EqualFold(b.Host, u.Host)
}

// escapeID escapes each segment of an owner/name dataset id
func escapeID(id string) string {
	parts := strings.Split(id, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

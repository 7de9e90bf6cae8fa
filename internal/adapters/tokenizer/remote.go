package tokenizer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	perr "codecorpus/internal/platform/errors"
)

const maxErrBody = 512

// Remote calls an HTTP tokenize endpoint that owns the model's real tokenizer
type Remote struct {
	URL    string
	Model  string
	Client *http.Client
}

// NewRemote builds a Remote with a one minute timeout
func NewRemote(url, model string) *Remote {
	return &Remote{URL: url, Model: model, Client: &http.Client{Timeout: time.Minute}}
}

type remoteReq struct {
	Model string `json:"model,omitempty"`
	Text  string `json:"text"`
}

// Count posts {"model","text"} and accepts {"count":N}, {"tokens":[...]} or [[...]]
func (r *Remote) Count(ctx context.Context, text string) (int, error) {
	body, err := json.Marshal(remoteReq{Model: r.Model, Text: text})
	if err != nil {
		return 0, perr.Wrap(err, perr.ErrorCodeJSON, "tokenizer: encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(body))
	if err != nil {
		return 0, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "tokenizer: build request %s", r.URL)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return 0, perr.Wrapf(err, perr.ErrorCodeUnavailable, "tokenizer: POST %s", r.URL)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		return 0, perr.FromStatus(resp.StatusCode, "tokenizer", strings.TrimSpace(string(b)))
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, perr.Wrap(err, perr.ErrorCodeUnavailable, "tokenizer: read response")
	}
	return parseCount(raw)
}

// parseCount understands the response shapes common tokenize servers return
func parseCount(raw []byte) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var batch [][]json.RawMessage
		if err := json.Unmarshal(raw, &batch); err != nil {
			return 0, perr.Wrap(err, perr.ErrorCodeJSON, "tokenizer: decode token batch")
		}
		if len(batch) == 0 {
			return 0, nil
		}
		return len(batch[0]), nil
	}
	var obj struct {
		Count  *int              `json:"count"`
		Tokens []json.RawMessage `json:"tokens"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return 0, perr.Wrap(err, perr.ErrorCodeJSON, "tokenizer: decode response")
	}
	switch {
	case obj.Count != nil:
		if *obj.Count < 0 {
			return 0, perr.Upstreamf("tokenizer: negative count %d", *obj.Count)
		}
		return *obj.Count, nil
	case obj.Tokens != nil:
		return len(obj.Tokens), nil
	}
	return 0, perr.JSONErrf("tokenizer: response has neither count nor tokens")
}

// Package tokenizer counts tokens with a local BPE encoding or a remote tokenize endpoint
package tokenizer

import (
	"context"
	"strings"
	"sync"

	perr "codecorpus/internal/platform/errors"
	"codecorpus/internal/platform/logger"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultModel is the model whose tokenizer the harvester reports against
const DefaultModel = "Qwen/Qwen3-Coder-30B-A3B-Instruct"

// FallbackEncoding is used when the model has no known tiktoken encoding
const FallbackEncoding = "o200k_base"

// Tokenizer counts tokens in text
type Tokenizer interface {
	Count(ctx context.Context, text string) (int, error)
}

// Tiktoken counts with a local tiktoken encoding
type Tiktoken struct {
	mu       sync.Mutex
	enc      *tiktoken.Tiktoken
	Encoding string // encoding name, e.g. cl100k_base
}

// NewTiktoken resolves the encoding for model, falling back to o200k_base
func NewTiktoken(model string) (*Tiktoken, error) {
	name, ok := encodingFor(model)
	if !ok {
		name = FallbackEncoding
		logger.Named("tokenizer").Warn().
			Str("model", model).Str("encoding", name).
			Msg("no local encoding for model; token counts are approximate")
	}
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "tokenizer: load %s", name)
	}
	return &Tiktoken{enc: enc, Encoding: name}, nil
}

// encodingFor resolves a model name to its encoding name, exact match first, then by prefix
func encodingFor(model string) (string, bool) {
	if name, ok := tiktoken.MODEL_TO_ENCODING[model]; ok {
		return name, true
	}
	for prefix, name := range tiktoken.MODEL_PREFIX_TO_ENCODING {
		if strings.HasPrefix(model, prefix) {
			return name, true
		}
	}
	return "", false
}

// Count encodes text without special tokens and returns the token count
func (t *Tiktoken) Count(ctx context.Context, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.enc.EncodeOrdinary(text)), nil
}

// New returns a Remote tokenizer when url is set, otherwise a local Tiktoken one
func New(model, url string) (Tokenizer, error) {
	if url != "" {
		return NewRemote(url, model), nil
	}
	return NewTiktoken(model)
}

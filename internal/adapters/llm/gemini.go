package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	perr "codecorpus/internal/platform/errors"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is given
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiOptions configures the Gemini backend
type GeminiOptions struct {
	APIKey   string
	Model    string
	Sampling Sampling
	Pacing   Pacing
}

// generateFunc is the one genai call we make, kept as a seam for tests
type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Gemini calls Google Gemini through the genai SDK
type Gemini struct {
	model    string
	sampling Sampling
	timeout  time.Duration
	limiter  *rate.Limiter
	generate generateFunc
}

// NewGemini builds a genai client for the Gemini API backend
func NewGemini(ctx context.Context, o GeminiOptions) (*Gemini, error) {
	if o.APIKey == "" {
		return nil, perr.WithField(perr.InvalidArgf("gemini api key is required"), "GEMINI_API_KEY")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  o.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "gemini: client")
	}
	return newGemini(o, client.Models.GenerateContent), nil
}

func newGemini(o GeminiOptions, gen generateFunc) *Gemini {
	model := o.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{
		model:    model,
		sampling: o.Sampling,
		timeout:  o.Pacing.Timeout,
		limiter:  o.Pacing.limiter(),
		generate: gen,
	}
}

// Complete sends the system instruction and user text and returns the response text
func (g *Gemini) Complete(ctx context.Context, system, user string) (string, error) {
	cctx, cancel, err := wait(ctx, g.limiter, g.timeout)
	if err != nil {
		return "", err
	}
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(g.sampling.Temperature),
		MaxOutputTokens:   int32(g.sampling.MaxTokens),
	}
	resp, err := g.generate(cctx, g.model, genai.Text(user), cfg)
	if err != nil {
		return "", classifyGenai(err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", perr.Upstreamf("gemini: empty response from %s", g.model)
	}
	return text, nil
}

// classifyGenai maps SDK errors onto perr codes by HTTP status
func classifyGenai(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return perr.Wrap(err, perr.CodeForStatus(apiErr.Code), "gemini: generate content")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return perr.Wrap(err, perr.CodeForStatus(http.StatusRequestTimeout), "gemini: generate content")
	}
	return perr.Wrap(err, perr.ErrorCodeUpstream, "gemini: generate content")
}

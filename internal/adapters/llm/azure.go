package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	perr "codecorpus/internal/platform/errors"

	"golang.org/x/time/rate"
)

// DefaultAzureAPIVersion is the chat completions api-version sent when none is set
const DefaultAzureAPIVersion = "2024-02-15-preview"

const maxErrBody = 1024

// AzureOptions configures an Azure OpenAI deployment
type AzureOptions struct {
	Endpoint   string
	Deployment string
	APIVersion string
	APIKey     string
	Sampling   Sampling
	Pacing     Pacing
}

// Azure calls an Azure OpenAI chat completions deployment over REST
type Azure struct {
	url      string
	apiKey   string
	sampling Sampling
	timeout  time.Duration
	limiter  *rate.Limiter
	do       func(*http.Request) (*http.Response, error)
}

// NewAzure validates options and builds the deployment URL
func NewAzure(o AzureOptions) (*Azure, error) {
	if strings.TrimSpace(o.Endpoint) == "" {
		return nil, perr.WithField(perr.InvalidArgf("azure endpoint is required"), "azure_endpoint")
	}
	if strings.TrimSpace(o.Deployment) == "" {
		return nil, perr.WithField(perr.InvalidArgf("azure deployment is required"), "azure_deployment")
	}
	if o.APIKey == "" {
		return nil, perr.WithField(perr.InvalidArgf("azure api key is required"), "AZURE_OPENAI_API_KEY")
	}
	if o.APIVersion == "" {
		o.APIVersion = DefaultAzureAPIVersion
	}
	u := strings.TrimRight(o.Endpoint, "/") + "/openai/deployments/" + url.PathEscape(o.Deployment) +
		"/chat/completions?api-version=" + url.QueryEscape(o.APIVersion)

	hc := &http.Client{}
	return &Azure{
		url:      u,
		apiKey:   o.APIKey,
		sampling: o.Sampling,
		timeout:  o.Pacing.Timeout,
		limiter:  o.Pacing.limiter(),
		do:       hc.Do,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatReq struct {
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Complete sends one system+user exchange and returns the assistant text
func (a *Azure) Complete(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatReq{
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: a.sampling.Temperature,
		MaxTokens:   a.sampling.MaxTokens,
	})
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeJSON, "azure: encode request")
	}

	cctx, cancel, err := wait(ctx, a.limiter, a.timeout)
	if err != nil {
		return "", err
	}
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeInvalidArgument, "azure: build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", a.apiKey)

	resp, err := a.do(req)
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnavailable, "azure: chat completions")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		return "", perr.FromStatus(resp.StatusCode, "azure chat", strings.TrimSpace(string(b)))
	}
	var out chatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeJSON, "azure: decode response")
	}
	if len(out.Choices) == 0 {
		return "", perr.Upstreamf("azure: response has no choices")
	}
	if out.Choices[0].FinishReason == "content_filter" {
		return "", perr.Upstreamf("azure: response blocked by content filter")
	}
	return out.Choices[0].Message.Content, nil
}

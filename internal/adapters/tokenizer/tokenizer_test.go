package tokenizer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	perr "codecorpus/internal/platform/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
		code perr.ErrorCode
	}{
		{"count", `{"count": 42}`, 42, 0},
		{"tokens", `{"tokens": [1, 2, 3]}`, 3, 0},
		{"string tokens", `{"tokens": ["a", "b"]}`, 2, 0},
		{"batch", `[[5, 6, 7, 8]]`, 4, 0},
		{"empty batch", `[]`, 0, 0},
		{"neither", `{"ids": [1]}`, 0, perr.ErrorCodeJSON},
		{"garbage", `nope`, 0, perr.ErrorCodeJSON},
		{"negative", `{"count": -1}`, 0, perr.ErrorCodeUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCount([]byte(tt.raw))
			if tt.code != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.code, perr.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRemote_Count(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req remoteReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		fmt.Fprintf(w, `{"count": %d}`, len(req.Text))
	}))
	defer srv.Close()

	tok, err := New(DefaultModel, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "o200k_base", tok.Encoding)
	n, err := tok.Count(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, 11, n)
}

func TestRemote_StatusMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewRemote(srv.URL, "m").Count(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeUnavailable))
	assert.Contains(t, err.Error(), "overloaded")
}

func TestTiktoken_Count(t *testing.T) {
	tok, err := NewTiktoken("gpt-4o")
	if err != nil {
		t.Skipf("encoding unavailable offline: %v", err)
	}
	n, err := tok.Count(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Positive(t, n)

	empty, err := tok.Count(context.Background(), "")
	require.NoError(t, err)
	assert.Zero(t, empty)
}

func TestEncodingFor(t *testing.T) {
	tests := []struct {
		model string
		want  string
		ok    bool
	}{
		{"gpt-4", "cl100k_base", true},
		{"gpt-4o", "o200k_base", true},
		{"gpt-4-0613", "cl100k_base", true},
		{DefaultModel, "", false},
	}
	for _, tt := range tests {
		got, ok := encodingFor(tt.model)
		assert.Equal(t, tt.ok, ok, tt.model)
		assert.Equal(t, tt.want, got, tt.model)
	}
}

package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeForStatus(t *testing.T) {
	for status, want := range map[int]ErrorCode{
		http.StatusTooManyRequests:     ErrorCodeTooManyRequests,
		http.StatusNotFound:            ErrorCodeNotFound,
		http.StatusRequestTimeout:      ErrorCodeUnavailable,
		http.StatusBadGateway:          ErrorCodeUnavailable,
		http.StatusServiceUnavailable:  ErrorCodeUnavailable,
		http.StatusBadRequest:          ErrorCodeUpstream,
		http.StatusUnauthorized:        ErrorCodeUpstream,
		http.StatusUnprocessableEntity: ErrorCodeUpstream,
	} {
		if got := CodeForStatus(status); got != want {
			t.Errorf("CodeForStatus(%d) = %s, want %s", status, got, want)
		}
	}
}

func TestErrorCodeString(t *testing.T) {
	if got := ErrorCodeTooManyRequests.String(); got != "too_many_requests" {
		t.Fatalf("name = %q", got)
	}
	if got := ErrorCode(500).String(); got != "unknown" {
		t.Fatalf("out of range name = %q", got)
	}
}

func TestWrapChain(t *testing.T) {
	cause := stderrs.New("disk full")
	err := Wrapf(cause, ErrorCodeIO, "write %s", "train.parquet")

	if got := err.Error(); got != "write train.parquet: disk full" {
		t.Fatalf("Error() = %q", got)
	}
	if !stderrs.Is(err, cause) {
		t.Fatal("cause lost")
	}

	// a foreign wrapper around ours still classifies
	outer := fmt.Errorf("train: %w", err)
	if !IsCode(outer, ErrorCodeIO) {
		t.Fatalf("CodeOf(outer) = %s", CodeOf(outer))
	}
	e, ok := As(outer)
	if !ok || e.Message() != "write train.parquet" {
		t.Fatalf("As(outer) = %v, %v", e, ok)
	}

	if CodeOf(cause) != ErrorCodeUnknown {
		t.Fatal("foreign error should be unknown")
	}
	var nilErr *Error
	if nilErr.Error() != "<nil>" {
		t.Fatal("nil render")
	}
}

func TestWithFieldAndOp(t *testing.T) {
	base := New(ErrorCodeInvalidArgument, "unknown language")
	tagged := WithOp(WithField(base, "languages"), "collect")

	e, _ := As(tagged)
	if e.Field() != "languages" || e.Op() != "collect" || e.Code() != ErrorCodeInvalidArgument {
		t.Fatalf("tagged = %+v", e)
	}
	if orig, _ := As(base); orig.Field() != "" || orig.Op() != "" {
		t.Fatal("base mutated")
	}

	foreign := stderrs.New("plain")
	if WithField(foreign, "x") != foreign || WithOp(foreign, "x") != foreign {
		t.Fatal("foreign error should pass through")
	}
}

func TestSugar(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorCode
	}{
		{NotFoundf("shard %d", 3), ErrorCodeNotFound},
		{InvalidArgf("bad"), ErrorCodeInvalidArgument},
		{JSONErrf("bad"), ErrorCodeJSON},
		{Decodef("bad"), ErrorCodeDecode},
		{EmptyInputf("bad"), ErrorCodeEmptyInput},
		{IOf("bad"), ErrorCodeIO},
		{Upstreamf("bad"), ErrorCodeUpstream},
		{Internalf("bad"), ErrorCodeUnknown},
		{Newf(ErrorCodeValidation, "bad %s", "x"), ErrorCodeValidation},
	}
	for _, tc := range cases {
		if !IsCode(tc.err, tc.want) {
			t.Errorf("%q: code = %s, want %s", tc.err, CodeOf(tc.err), tc.want)
		}
	}
	if got := NotFoundf("shard %d", 3).Error(); got != "shard 3" {
		t.Fatalf("format = %q", got)
	}
}

func TestFromStatus(t *testing.T) {
	err := FromStatus(http.StatusTooManyRequests, "azure chat", "slow down")
	if !IsCode(err, ErrorCodeTooManyRequests) {
		t.Fatalf("code = %s", CodeOf(err))
	}
	if got := err.Error(); got != "azure chat: upstream status 429: slow down" {
		t.Fatalf("message = %q", got)
	}
	if got := FromStatus(http.StatusInternalServerError, "hub", "").Error(); got != "hub: upstream status 500" {
		t.Fatalf("empty body = %q", got)
	}
}

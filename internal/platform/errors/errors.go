// Package errors is the corpus error type: a stable code, a message,
// an optional offending field and operation tag, and the wrapped cause.
//
// Import it as perr so it never shadows the standard errors package.
package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies a failure. Codes are logged by name, so the
// names below are part of the pipelines' output contract.
type ErrorCode uint16

const (
	ErrorCodeUnknown         ErrorCode = iota // unclassified
	ErrorCodeUnavailable                      // transient upstream failure, timeout or cancellation
	ErrorCodeTooManyRequests                  // upstream rate limit
	ErrorCodeInvalidArgument                  // bad flag, language name or path
	ErrorCodeValidation                       // struct or trainer config validation
	ErrorCodeJSON                             // JSON encode or decode
	ErrorCodeNotFound                         // missing file, shard or object
	ErrorCodeDecode                           // bytes that are not text in any accepted encoding
	ErrorCodeEmptyInput                       // nothing to compute over
	ErrorCodeIO                               // local filesystem or object storage
	ErrorCodeUpstream                         // non-retryable external service or process failure
)

var codeNames = [...]string{
	ErrorCodeUnknown:         "unknown",
	ErrorCodeUnavailable:     "unavailable",
	ErrorCodeTooManyRequests: "too_many_requests",
	ErrorCodeInvalidArgument: "invalid_argument",
	ErrorCodeValidation:      "validation",
	ErrorCodeJSON:            "json",
	ErrorCodeNotFound:        "not_found",
	ErrorCodeDecode:          "decode",
	ErrorCodeEmptyInput:      "empty_input",
	ErrorCodeIO:              "io",
	ErrorCodeUpstream:        "upstream",
}

func (c ErrorCode) String() string {
	if int(c) < len(codeNames) {
		return codeNames[c]
	}
	return codeNames[ErrorCodeUnknown]
}

// CodeForStatus classifies a non-2xx HTTP status from an upstream service
func CodeForStatus(status int) ErrorCode {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorCodeTooManyRequests
	case status == http.StatusNotFound:
		return ErrorCodeNotFound
	case status == http.StatusRequestTimeout, status >= 500 && status < 600:
		return ErrorCodeUnavailable
	}
	return ErrorCodeUpstream
}

// Error is the structured error carried through every pipeline
type Error struct {
	code  ErrorCode
	msg   string
	field string
	op    string
	cause error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.cause == nil:
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

// Code is the machine-facing classification
func (e *Error) Code() ErrorCode { return e.code }

// Message is the text without the cause chain
func (e *Error) Message() string { return e.msg }

// Field names the offending input, if any (flag, config key, column)
func (e *Error) Field() string { return e.field }

// Op tags the operation that failed, if set
func (e *Error) Op() string { return e.op }

// As finds the first *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	ok := stderrs.As(err, &e)
	return e, ok
}

// CodeOf is the code of the first *Error in the chain, or Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether CodeOf(err) is code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// with returns a copy of the *Error in err with edit applied; foreign errors pass through untouched
func with(err error, edit func(*Error)) error {
	e, ok := As(err)
	if !ok {
		return err
	}
	c := *e
	edit(&c)
	return &c
}

// WithField copies err with field set
func WithField(err error, field string) error {
	return with(err, func(e *Error) { e.field = field })
}

// WithOp copies err with op set
func WithOp(err error, op string) error {
	return with(err, func(e *Error) { e.op = op })
}

func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap classifies cause under code with a message
func Wrap(cause error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, cause: cause}
}

func Wrapf(cause error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), cause: cause}
}

func sugar(code ErrorCode) func(string, ...any) error {
	return func(format string, a ...any) error { return Newf(code, format, a...) }
}

// Constructors for the common codes
var (
	NotFoundf   = sugar(ErrorCodeNotFound)
	InvalidArgf = sugar(ErrorCodeInvalidArgument)
	JSONErrf    = sugar(ErrorCodeJSON)
	Decodef     = sugar(ErrorCodeDecode)
	EmptyInputf = sugar(ErrorCodeEmptyInput)
	IOf         = sugar(ErrorCodeIO)
	Upstreamf   = sugar(ErrorCodeUpstream)
	Internalf   = sugar(ErrorCodeUnknown)
)

// FromStatus reports a non-2xx upstream response; body is an already truncated excerpt
func FromStatus(status int, what, body string) error {
	msg := fmt.Sprintf("%s: upstream status %d", what, status)
	if body != "" {
		msg += ": " + body
	}
	return New(CodeForStatus(status), msg)
}

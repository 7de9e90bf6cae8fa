package service

import (
	"strings"
	"unicode/utf8"

	perr "codecorpus/internal/platform/errors"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// DefaultFallback is tried when a file is not valid UTF-8
const DefaultFallback = "cp949"

// Encoding resolves a fallback encoding name; cp949 is not a WHATWG label
func Encoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "cp949", "ms949", "uhc":
		return korean.EUCKR, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, perr.WithField(perr.InvalidArgf("unknown fallback encoding %q", name), "fallback_encoding")
	}
	return enc, nil
}

// decode returns b as text: UTF-8 when valid, otherwise through fallback.
// A fallback result holding replacement runes is a decode error.
func decode(b []byte, fallback encoding.Encoding, name string) (text string, usedFallback bool, err error) {
	if utf8.Valid(b) {
		return string(b), false, nil
	}
	out, _, err := transform.Bytes(fallback.NewDecoder(), b)
	if err != nil {
		return "", true, perr.Wrapf(err, perr.ErrorCodeDecode, "decode as %s", name)
	}
	if !utf8.Valid(out) || strings.ContainsRune(string(out), utf8.RuneError) {
		return "", true, perr.Decodef("not valid UTF-8 or %s", name)
	}
	return string(out), true, nil
}

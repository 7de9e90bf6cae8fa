package store

import (
	"path"
	"path/filepath"
	"strings"

	perr "codecorpus/internal/platform/errors"
)

const s3Scheme = "s3://"

// Location is a parsed artifact address
// Path is set for local files, Bucket and Key for object storage
type Location struct {
	Path   string
	Bucket string
	Key    string
}

// Remote reports whether the location lives in object storage
func (l Location) Remote() bool { return l.Bucket != "" }

func (l Location) String() string {
	if l.Remote() {
		return s3Scheme + l.Bucket + "/" + l.Key
	}
	return l.Path
}

// Join appends slash separated elements to the location
func (l Location) Join(elem ...string) Location {
	if l.Remote() {
		parts := append([]string{l.Key}, elem...)
		l.Key = strings.TrimPrefix(path.Join(parts...), "/")
		return l
	}
	parts := append([]string{l.Path}, elem...)
	l.Path = filepath.Join(parts...)
	return l
}

// Parse splits a uri into a Location; anything without the s3 scheme is a local path
func Parse(uri string) (Location, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return Location{}, perr.WithField(perr.InvalidArgf("empty location"), "uri")
	}
	if !strings.HasPrefix(uri, s3Scheme) {
		return Location{Path: uri}, nil
	}
	rest := strings.TrimPrefix(uri, s3Scheme)
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Location{}, perr.WithField(perr.InvalidArgf("missing bucket in %q", uri), "uri")
	}
	return Location{Bucket: bucket, Key: strings.TrimSuffix(key, "/")}, nil
}

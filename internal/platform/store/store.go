// Package store reads and writes pipeline artifacts on the local disk or in object storage
package store

import (
	"context"
	"io"

	perr "codecorpus/internal/platform/errors"
	"codecorpus/internal/platform/logger"
)

// Store is the facade every pipeline uses for its file handoff
// zero value is safe and serves local paths only
type Store struct {
	// Log is the logger used by subclients
	// zero means a no op zerolog logger
	Log logger.Logger

	// S3 is the object storage seam, nil when disabled
	S3 Objects
}

// Objects is the tiny object storage seam used for s3:// locations
type Objects interface {
	Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// Open constructs a Store with the requested backends
// backends not enabled in cfg remain nil on the Store
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		o(s)
	}

	// defaults for zero logger to avoid nil checks
	s.Log = s.Log.With().Logger()

	if cfg.S3.Enabled && s.S3 == nil {
		obj, err := openS3(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		s.S3 = obj
	}

	return s, nil
}

// objects returns the S3 seam or an error naming the location that needed it
func (s *Store) objects(loc Location) (Objects, error) {
	if s == nil || s.S3 == nil {
		return nil, perr.WithField(
			perr.InvalidArgf("object storage is not configured (set CORE_S3_ENDPOINT) for %s", loc),
			"uri",
		)
	}
	return s.S3, nil
}

// Close releases the backends
// minio clients hold no resources beyond pooled connections, so this is a no-op today
func (s *Store) Close(_ context.Context) error { return nil }

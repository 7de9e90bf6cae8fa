package store

import "codecorpus/internal/platform/logger"

// Option adjusts a Store before Open dials any backend
type Option func(*Store)

// WithLogger routes store diagnostics (uploads, S3 dialing) to log
func WithLogger(log logger.Logger) Option { return func(s *Store) { s.Log = log } }

// WithObjects installs an object storage seam; Open then skips dialing S3
func WithObjects(o Objects) Option { return func(s *Store) { s.S3 = o } }

package domain

import "context"

// RunnerPort is the collector surface driven by the binary
type RunnerPort interface {
	Run(ctx context.Context, req Request) (Result, error)
}

// RowStream yields rows until io.EOF; Close releases the underlying reader
type RowStream interface {
	Next() (Row, error)
	Close() error
}

// Source opens a fresh row stream
type Source interface {
	Open(ctx context.Context) (RowStream, error)
}

// Classifier maps a file path to its language, validates language names and
// lists the extensions that select them
type Classifier interface {
	Classify(path string) (string, bool)
	Validate(names []string) error
	Extensions(names ...string) []string
}

package storage

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("seen-set store closed")

// Config configures storage.
//
// Driver values:
//   - "file": append-only log at Path (default)
//   - "memory": nothing is persisted
type Config struct {
	Driver string
	Path   string
}

// Store is the seen-set: an in-memory set for queries backed by an
// append-only writer for persistence.
type Store interface {
	// Contains is a pure lookup against the loaded set.
	Contains(id string) bool
	// Record persists id, then adds it to the set. Recording a known id is a no-op.
	Record(ctx context.Context, id string) error
	Len() int
	Close() error
}

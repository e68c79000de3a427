// Package vfsh contains core domain types and interfaces shared by the
// virtual filesystem, the shell and its commands
package vfsh

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrReadOnly is returned by [FileAdapter.Create] for sources that cannot be written
var ErrReadOnly = errors.New("read-only source")

// FileAdapter defines the core operations for moving file data to and from an
// external source. Instances are 1:1 with the filesystem node they back.
type FileAdapter interface {
	// Open returns a reader positioned at the start of the content
	Open(ctx context.Context) (io.ReadCloser, error)

	// Create returns a writer that replaces the content.
	// Read-only sources return [ErrReadOnly].
	Create(ctx context.Context) (io.WriteCloser, error)

	// Writable reports whether Create can succeed
	Writable() bool

	GetMeta(ctx context.Context) (*FileMetadata, error)
}

// AdapterProvider is a factory for concrete [FileAdapter] implementations
// generated from a raw source definition.
type AdapterProvider interface {
	NewAdapter(raw []byte) (FileAdapter, error)
}

// FileSource is a container for concrete adapter implementations that can be
// passed to the filesystem
type FileSource struct {
	FileAdapter
	Priority int `json:"priority,omitempty"` // Lower number = higher priority
}

// FileMetadata contains standardized metadata across all adapter types
type FileMetadata struct {
	Size         int64 // -1 when unknown
	LastModified *time.Time
	Version      string         // Generic version identifier
	TTL          *time.Duration // nil = default policy, 0 = never reuse, >0 = reuse for duration
}

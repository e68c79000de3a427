package filesystem

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/brettbedarf/vfsh"
)

// Open returns a reader over the node content
func (n *Node) Open(ctx context.Context) (io.ReadCloser, error) {
	switch n.kind {
	case KindStaticFile:
		return io.NopCloser(strings.NewReader(n.content)), nil
	case KindDynamicFile:
		s, err := n.generate(ctx)
		if err != nil {
			return nil, &PathError{Op: "open", Path: n.FullName(), Err: err}
		}
		return io.NopCloser(strings.NewReader(s)), nil
	case KindExternalFile:
		rc, err := n.adapter.Open(ctx)
		if err != nil {
			return nil, &PathError{Op: "open", Path: n.FullName(), Err: err}
		}
		return rc, nil
	case KindDirectory:
		return nil, &PathError{Op: "open", Path: n.FullName(), Err: ErrIsDirectory}
	default:
		return nil, &PathError{Op: "open", Path: n.FullName(), Err: ErrNotSupported}
	}
}

// Create returns a writer replacing the node content
func (n *Node) Create(ctx context.Context) (io.WriteCloser, error) {
	switch {
	case n.kind == KindDirectory:
		return nil, &PathError{Op: "create", Path: n.FullName(), Err: ErrIsDirectory}
	case !n.CanWrite():
		return nil, &PathError{Op: "create", Path: n.FullName(), Err: ErrNotSupported}
	}
	wc, err := n.adapter.Create(ctx)
	if errors.Is(err, vfsh.ErrReadOnly) {
		return nil, &PathError{Op: "create", Path: n.FullName(), Err: ErrNotSupported}
	}
	if err != nil {
		return nil, &PathError{Op: "create", Path: n.FullName(), Err: err}
	}
	return wc, nil
}

// ReadAll returns the whole node content
func (n *Node) ReadAll(ctx context.Context) ([]byte, error) {
	rc, err := n.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

package mocks

import (
	"context"
	"io"

	"github.com/brettbedarf/vfsh"
	"github.com/stretchr/testify/mock"
)

// MockFileAdapter implements vfsh.FileAdapter for testing across packages
type MockFileAdapter struct {
	mock.Mock
}

func (m *MockFileAdapter) Open(ctx context.Context) (io.ReadCloser, error) {
	args := m.Called(ctx)

	// Handle function return types so each call can get a fresh reader
	if fn, ok := args.Get(0).(func(context.Context) io.ReadCloser); ok {
		return fn(ctx), args.Error(1)
	}

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockFileAdapter) Create(ctx context.Context) (io.WriteCloser, error) {
	args := m.Called(ctx)

	if fn, ok := args.Get(0).(func(context.Context) io.WriteCloser); ok {
		return fn(ctx), args.Error(1)
	}

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockFileAdapter) Writable() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockFileAdapter) GetMeta(ctx context.Context) (*vfsh.FileMetadata, error) {
	args := m.Called(ctx)

	if fn, ok := args.Get(0).(func(context.Context) *vfsh.FileMetadata); ok {
		return fn(ctx), args.Error(1)
	}

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vfsh.FileMetadata), args.Error(1)
}

var _ vfsh.FileAdapter = (*MockFileAdapter)(nil)

// MockAdapterProvider implements vfsh.AdapterProvider for testing across packages
type MockAdapterProvider struct {
	mock.Mock
}

func (m *MockAdapterProvider) NewAdapter(raw []byte) (vfsh.FileAdapter, error) {
	args := m.Called(raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(vfsh.FileAdapter), args.Error(1)
}

var _ vfsh.AdapterProvider = (*MockAdapterProvider)(nil)

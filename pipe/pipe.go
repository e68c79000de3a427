// Package pipe connects two pipeline stages. A Source is the write end one
// stage prints to, a Sink the read end the next stage consumes. Every Write
// on the source travels as one discrete unit.
package pipe

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// ErrClosedPipe is returned when writing to a sink that was closed by its
// reader or already ended
var ErrClosedPipe = io.ErrClosedPipe

// Sink is the consuming end of a pipe. It holds at most its capacity of
// pending units and is read through Next or as an [io.Reader].
type Sink struct {
	units  chan []byte
	ended  chan struct{}
	closed chan struct{}

	endOnce   sync.Once
	closeOnce sync.Once
	err       error // set before ended is closed

	rmu  sync.Mutex
	rest []byte // unread part of the current unit
}

// NewSink creates an open sink queueing up to capacity units
func NewSink(capacity int) *Sink {
	return &Sink{
		units:  make(chan []byte, max(capacity, 0)),
		ended:  make(chan struct{}),
		closed: make(chan struct{}),
	}
}

// EmptySink returns a sink that has already ended without data
func EmptySink() *Sink {
	s := NewSink(0)
	s.End(nil)
	return s
}

// Next returns the next unit in write order. Once the sink has ended and
// every queued unit was consumed it returns io.EOF, or the error the sink
// was ended with.
func (s *Sink) Next(ctx context.Context) ([]byte, error) {
	select {
	case u := <-s.units:
		return u, nil
	default:
	}
	select {
	case u := <-s.units:
		return u, nil
	case <-s.ended:
		select {
		case u := <-s.units:
			return u, nil
		default:
		}
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	case <-s.closed:
		return nil, ErrClosedPipe
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Read implements io.Reader over the unit stream
func (s *Sink) Read(p []byte) (int, error) {
	s.rmu.Lock()
	defer s.rmu.Unlock()

	for len(s.rest) == 0 {
		u, err := s.Next(context.Background())
		if err != nil {
			return 0, err
		}
		s.rest = u
	}
	n := copy(p, s.rest)
	s.rest = s.rest[n:]
	return n, nil
}

// End marks the end of the stream. Units already queued stay readable.
// A nil err reads as io.EOF.
func (s *Sink) End(err error) {
	s.endOnce.Do(func() {
		s.err = err
		close(s.ended)
	})
}

// Close is called by the reader when it stops consuming. Pending and
// future writes fail with ErrClosedPipe.
func (s *Sink) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
	return nil
}

// Ended reports whether End was called
func (s *Sink) Ended() bool {
	select {
	case <-s.ended:
		return true
	default:
		return false
	}
}

// Err returns the error the sink was ended with
func (s *Sink) Err() error {
	if !s.Ended() {
		return nil
	}
	return s.err
}

func (s *Sink) send(ctx context.Context, unit []byte) error {
	select {
	case <-s.closed:
		return ErrClosedPipe
	case <-s.ended:
		return ErrClosedPipe
	default:
	}
	select {
	case s.units <- unit:
		return nil
	case <-s.closed:
		return ErrClosedPipe
	case <-s.ended:
		return ErrClosedPipe
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Source is the producing end bound to one sink. It is used by a single
// writer for a single pipeline run.
type Source struct {
	sink         *Sink
	destroyOnEnd bool
	once         sync.Once
	done         chan struct{}
}

// NewSource binds a source to sink. With destroyOnEnd closing the source
// ends the sink too; otherwise the owner of the sink has to end it.
func NewSource(sink *Sink, destroyOnEnd bool) *Source {
	return &Source{sink: sink, destroyOnEnd: destroyOnEnd, done: make(chan struct{})}
}

// New returns a connected source and sink that ends with the source
func New(capacity int) (*Source, *Sink) {
	sink := NewSink(capacity)
	return NewSource(sink, true), sink
}

// Write forwards a copy of p as one unit, blocking while the sink is full
func (s *Source) Write(p []byte) (int, error) {
	return s.WriteContext(context.Background(), p)
}

// WriteContext is Write that gives up when ctx is done
func (s *Source) WriteContext(ctx context.Context, p []byte) (int, error) {
	select {
	case <-s.done:
		return 0, ErrClosedPipe
	default:
	}
	if len(p) == 0 {
		return 0, nil
	}
	if err := s.sink.send(ctx, bytes.Clone(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close ends the source, and the sink when destroyOnEnd is set
func (s *Source) Close() error {
	return s.CloseWithError(nil)
}

// CloseWithError ends the source; with destroyOnEnd the sink's reader
// receives err after draining the queued units
func (s *Source) CloseWithError(err error) error {
	s.once.Do(func() {
		close(s.done)
		if s.destroyOnEnd {
			s.sink.End(err)
		}
	})
	return nil
}

// Sink returns the bound sink
func (s *Source) Sink() *Sink {
	return s.sink
}

package pipe

import (
	"bufio"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, s *Sink) []string {
	t.Helper()
	var out []string
	for {
		u, err := s.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, string(u))
	}
}

func TestPipe_ForwardsUnitsInOrder(t *testing.T) {
	t.Parallel()

	src, sink := New(4)
	for _, u := range []string{"a", "b", "c"} {
		n, err := src.Write([]byte(u))
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	}
	require.NoError(t, src.Close())

	assert.Equal(t, []string{"a", "b", "c"}, drain(t, sink))
}

func TestPipe_ConcurrentProducer(t *testing.T) {
	t.Parallel()

	// unbuffered: every unit is a rendezvous
	src, sink := New(0)
	want := make([]string, 100)
	for i := range want {
		want[i] = string(rune('a' + i%26))
	}
	go func() {
		for _, u := range want {
			_, _ = src.Write([]byte(u))
		}
		src.Close()
	}()

	assert.Equal(t, want, drain(t, sink))
}

func TestPipe_DestroyOnEnd(t *testing.T) {
	t.Parallel()

	t.Run("ends sink", func(t *testing.T) {
		t.Parallel()
		sink := NewSink(1)
		src := NewSource(sink, true)
		assert.False(t, sink.Ended())
		require.NoError(t, src.Close())
		assert.True(t, sink.Ended())
		assert.NoError(t, sink.Err())
	})
	t.Run("propagates failure", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		sink := NewSink(2)
		src := NewSource(sink, true)
		_, err := src.Write([]byte("x"))
		require.NoError(t, err)
		require.NoError(t, src.CloseWithError(boom))

		u, err := sink.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "x", string(u))
		_, err = sink.Next(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.ErrorIs(t, sink.Err(), boom)
	})
	t.Run("disabled leaves sink open", func(t *testing.T) {
		t.Parallel()
		sink := NewSink(1)
		src := NewSource(sink, false)
		require.NoError(t, src.Close())
		assert.False(t, sink.Ended())

		_, err := src.Write([]byte("late"))
		assert.ErrorIs(t, err, ErrClosedPipe)
		sink.End(nil)
		assert.True(t, sink.Ended())
	})
}

func TestPipe_ReaderClose(t *testing.T) {
	t.Parallel()

	src, sink := New(0)
	errc := make(chan error, 1)
	go func() {
		_, err := src.Write([]byte("blocked"))
		errc <- err
	}()

	require.NoError(t, sink.Close())
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrClosedPipe)
	case <-time.After(time.Second):
		t.Fatal("writer stayed blocked after the reader closed")
	}
	_, err := src.Write([]byte("again"))
	assert.ErrorIs(t, err, ErrClosedPipe)
}

func TestPipe_WriteAfterEnd(t *testing.T) {
	t.Parallel()

	sink := NewSink(1)
	src := NewSource(sink, false)
	sink.End(nil)

	_, err := src.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrClosedPipe)
}

func TestPipe_Cancellation(t *testing.T) {
	t.Parallel()

	src, sink := New(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sink.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = src.WriteContext(ctx, []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSink_Reader(t *testing.T) {
	t.Parallel()

	src, sink := New(8)
	for _, line := range []string{"hello\n", "wor", "ld\n"} {
		_, err := src.Write([]byte(line))
		require.NoError(t, err)
	}
	src.Close()

	var lines []string
	sc := bufio.NewScanner(sink)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err())
	assert.Equal(t, []string{"hello", "world"}, lines)
}

func TestSink_SmallReads(t *testing.T) {
	t.Parallel()

	src, sink := New(1)
	go func() {
		src.Write([]byte("abcdef"))
		src.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(sink, 100))
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(data))

	buf := make([]byte, 2)
	_, err = sink.Read(buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestSink_WriteCopiesUnit(t *testing.T) {
	t.Parallel()

	src, sink := New(1)
	buf := []byte("abc")
	_, err := src.Write(buf)
	require.NoError(t, err)
	buf[0] = 'X'

	u, err := sink.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", string(u))
}

func TestEmptySink(t *testing.T) {
	t.Parallel()

	s := EmptySink()
	assert.True(t, s.Ended())
	data, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Empty(t, data)
}

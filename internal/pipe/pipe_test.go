package pipe_test

import (
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansiterm/videoplayer/internal/frame"
	"github.com/ansiterm/videoplayer/internal/pipe"
)

func TestPull_ReturnsLatestPushed(t *testing.T) {
	t.Parallel()

	producer, consumer := pipe.New()

	a := &frame.Sample{Width: 1, Height: 1, Pix: []byte{1, 1, 1}}
	b := &frame.Sample{Width: 1, Height: 1, Pix: []byte{2, 2, 2}}

	require.NoError(t, producer.Push(a))
	require.NoError(t, producer.Push(b)) // overwrites a; never pulled yet

	got, err := consumer.Pull()
	require.NoError(t, err)
	assert.Equal(t, b.Pix, got.Pix)
}

func TestPull_BlocksUntilPush(t *testing.T) {
	t.Parallel()

	producer, consumer := pipe.New()

	resultCh := make(chan *frame.Sample, 1)

	go func() {
		s, err := consumer.Pull()
		require.NoError(t, err)
		resultCh <- s
	}()

	runtime.Gosched()
	time.Sleep(10 * time.Millisecond)

	sample := &frame.Sample{Width: 1, Height: 1, Pix: []byte{9, 9, 9}}
	require.NoError(t, producer.Push(sample))

	select {
	case got := <-resultCh:
		assert.Equal(t, sample.Pix, got.Pix)
	case <-time.After(time.Second):
		t.Fatal("Pull did not unblock after Push")
	}
}

func TestClose_UnblocksWaitingPull(t *testing.T) {
	t.Parallel()

	producer, consumer := pipe.New()

	errCh := make(chan error, 1)

	go func() {
		_, err := consumer.Pull()
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	producer.Close()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, pipe.ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("Pull did not unblock after Close")
	}
}

func TestPushAfterClose_ReturnsErrClosed(t *testing.T) {
	t.Parallel()

	producer, consumer := pipe.New()
	producer.Close()

	err := producer.Push(&frame.Sample{Width: 1, Height: 1, Pix: []byte{0, 0, 0}})
	assert.ErrorIs(t, err, pipe.ErrClosed)

	_, err = consumer.Pull()
	assert.ErrorIs(t, err, pipe.ErrClosed)
}

func TestNoSampleEverDroppedAndObserved(t *testing.T) {
	t.Parallel()

	producer, consumer := pipe.New()

	const n = 50

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		for i := 0; i < n; i++ {
			_ = producer.Push(&frame.Sample{Width: 1, Height: 1, Pix: []byte{byte(i), 0, 0}})
		}

		producer.Close()
	}()

	var last byte

	for {
		s, err := consumer.Pull()
		if errors.Is(err, pipe.ErrClosed) {
			break
		}

		require.NoError(t, err)
		// Every observed sample must be one that was actually pushed, and
		// values must be non-decreasing (pushes are totally ordered).
		assert.GreaterOrEqual(t, s.Pix[0], last)
		last = s.Pix[0]
	}

	wg.Wait()
}

func TestReloader_ReloadsHeldSample(t *testing.T) {
	t.Parallel()

	producer, consumer := pipe.New()
	reloader := consumer.MakeReloader()

	sample := &frame.Sample{Width: 1, Height: 1, Pix: []byte{5, 5, 5}}
	require.NoError(t, producer.Push(sample))

	first, err := consumer.Pull()
	require.NoError(t, err)
	assert.Equal(t, sample.Pix, first.Pix)

	// Pulling again without a new push or Reload blocks forever; instead
	// reload the held sample and confirm it is deliverable again.
	require.NoError(t, reloader.Reload())

	second, err := consumer.Pull()
	require.NoError(t, err)
	assert.Equal(t, sample.Pix, second.Pix)
}

func TestReloader_ErrClosedAfterClose(t *testing.T) {
	t.Parallel()

	producer, consumer := pipe.New()
	reloader := consumer.MakeReloader()

	producer.Close()

	assert.ErrorIs(t, reloader.Reload(), pipe.ErrClosed)
}

func TestReloader_NoopWhenNoSampleHeld(t *testing.T) {
	t.Parallel()

	_, consumer := pipe.New()
	reloader := consumer.MakeReloader()

	assert.NoError(t, reloader.Reload())
}

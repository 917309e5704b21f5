package demopipe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansiterm/videoplayer/internal/frame"
	"github.com/ansiterm/videoplayer/internal/pipe"
	"github.com/ansiterm/videoplayer/internal/pipeline"
)

func sample(v byte) *frame.Sample {
	return &frame.Sample{Width: 1, Height: 1, Pix: []byte{v, v, v}}
}

func newTestPipeline(frames []*frame.Sample, frameDur time.Duration, producer *pipe.Producer) *Pipeline {
	return &Pipeline{
		state:    pipeline.Null,
		frames:   frames,
		frameDur: frameDur,
		producer: producer,
		messages: make(chan pipeline.Message, 16),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		asyncSig: make(chan struct{}),
		cleanup:  func() {},
	}
}

func TestPipeline_PlaybackPushesFramesInOrderThenEOSOnce(t *testing.T) {
	t.Parallel()

	producer, consumer := pipe.New()
	frames := []*frame.Sample{sample(1), sample(2), sample(3)}
	p := newTestPipeline(frames, 2*time.Millisecond, producer)

	go p.run()
	defer func() {
		close(p.stop)
		<-p.done
	}()

	require.NoError(t, p.SetState(pipeline.Playing))

	for _, want := range frames {
		got, err := consumer.Pull()
		require.NoError(t, err)
		assert.Equal(t, want.Pix, got.Pix)
	}

	eosCount := 0

	deadline := time.After(200 * time.Millisecond)

loop:
	for {
		select {
		case msg := <-p.messages:
			if msg.Kind == pipeline.MessageEOS {
				eosCount++
			}
		case <-deadline:
			break loop
		}
	}

	assert.Equal(t, 1, eosCount)
}

func TestSeek_ClampsIndexToValidRange(t *testing.T) {
	t.Parallel()

	producer, consumer := pipe.New()
	frames := []*frame.Sample{sample(1), sample(2), sample(3)}
	p := newTestPipeline(frames, time.Hour, producer)

	require.NoError(t, p.Seek(context.Background(), -1000, true))

	got, err := consumer.Pull()
	require.NoError(t, err)
	assert.Equal(t, frames[0].Pix, got.Pix)

	require.NoError(t, p.Seek(context.Background(), int64(100*time.Hour), true))

	got, err = consumer.Pull()
	require.NoError(t, err)
	assert.Equal(t, frames[len(frames)-1].Pix, got.Pix)
}

func TestSeek_NoFramesReturnsError(t *testing.T) {
	t.Parallel()

	producer, _ := pipe.New()
	p := newTestPipeline(nil, time.Second, producer)

	err := p.Seek(context.Background(), 0, true)
	assert.ErrorIs(t, err, pipeline.ErrSeekFailed)
}

func TestQueryPositionAndDuration_NoFramesIsNotOK(t *testing.T) {
	t.Parallel()

	producer, _ := pipe.New()
	p := newTestPipeline(nil, time.Second, producer)

	_, ok := p.QueryPosition()
	assert.False(t, ok)

	_, ok = p.QueryDuration()
	assert.False(t, ok)
}

func TestQueryDuration_MatchesFrameCountTimesDuration(t *testing.T) {
	t.Parallel()

	producer, _ := pipe.New()
	frames := []*frame.Sample{sample(1), sample(2)}
	p := newTestPipeline(frames, 100*time.Millisecond, producer)

	dur, ok := p.QueryDuration()
	require.True(t, ok)
	assert.Equal(t, int64(200*time.Millisecond), dur)
}

func TestWaitAsyncDone_ResolvesOnSetState(t *testing.T) {
	t.Parallel()

	producer, _ := pipe.New()
	p := newTestPipeline(nil, time.Second, producer)

	resultCh := make(chan bool, 1)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		resultCh <- p.WaitAsyncDone(ctx)
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, p.SetState(pipeline.Paused))

	select {
	case ok := <-resultCh:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("WaitAsyncDone did not resolve after SetState")
	}
}

func TestWaitAsyncDone_ContextCancelReturnsFalse(t *testing.T) {
	t.Parallel()

	producer, _ := pipe.New()
	p := newTestPipeline(nil, time.Second, producer)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.False(t, p.WaitAsyncDone(ctx))
}

func TestClose_StopsGoroutineAndRunsCleanup(t *testing.T) {
	t.Parallel()

	producer, _ := pipe.New()
	p := newTestPipeline(nil, time.Hour, producer)

	cleanedUp := false
	p.cleanup = func() { cleanedUp = true }

	go p.run()

	p.Close()

	assert.True(t, cleanedUp)
}

func TestPostBus_DropsWhenFull(t *testing.T) {
	t.Parallel()

	producer, _ := pipe.New()
	p := newTestPipeline(nil, time.Second, producer)
	p.messages = make(chan pipeline.Message, 1)

	p.PostBus(pipeline.Message{Kind: pipeline.MessageEOS})
	p.PostBus(pipeline.Message{Kind: pipeline.MessageError}) // bus full, dropped

	msg := <-p.messages
	assert.Equal(t, pipeline.MessageEOS, msg.Kind)

	select {
	case <-p.messages:
		t.Fatal("expected second message to have been dropped")
	default:
	}
}

package player

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

func TestTeardownStack_RunsInReverseOrder(t *testing.T) {
	t.Parallel()

	var order []int

	ts := newTeardownStack()
	ts.push(func() { order = append(order, 1) })
	ts.push(func() { order = append(order, 2) })
	ts.push(func() { order = append(order, 3) })

	ts.run()

	assert.Equal(t, []int{3, 2, 1}, order)
}

func TestTeardownStack_EmptyIsNoop(t *testing.T) {
	t.Parallel()

	ts := newTeardownStack()
	ts.run() // must not panic
}

type fakeBusPipeline struct {
	messages chan pipeline.Message
}

func (f *fakeBusPipeline) PostBus(msg pipeline.Message)            { f.messages <- msg }
func (f *fakeBusPipeline) CurrentState() pipeline.State            { return pipeline.Null }
func (f *fakeBusPipeline) SetState(pipeline.State) error           { return nil }
func (f *fakeBusPipeline) Seek(context.Context, int64, bool) error { return nil }
func (f *fakeBusPipeline) QueryPosition() (int64, bool)            { return 0, false }
func (f *fakeBusPipeline) QueryDuration() (int64, bool)            { return 0, false }
func (f *fakeBusPipeline) Messages() <-chan pipeline.Message       { return f.messages }

func TestDrainBus_EOSReturnsZero(t *testing.T) {
	t.Parallel()

	pl := &fakeBusPipeline{messages: make(chan pipeline.Message, 4)}
	pl.messages <- pipeline.Message{Kind: pipeline.MessageAsyncDone}
	pl.messages <- pipeline.Message{Kind: pipeline.MessageEOS}
	close(pl.messages)

	code, err := drainBus(pl)
	assert.Equal(t, 0, code)
	assert.NoError(t, err)
}

func TestDrainBus_ErrorReturnsOne(t *testing.T) {
	t.Parallel()

	pl := &fakeBusPipeline{messages: make(chan pipeline.Message, 4)}
	pl.messages <- pipeline.Message{Kind: pipeline.MessageError, Err: assert.AnError}
	close(pl.messages)

	code, err := drainBus(pl)
	assert.Equal(t, 1, code)
	assert.Equal(t, assert.AnError, err)
}

func TestDrainBus_ClosedWithNoTerminalMessageReturnsZero(t *testing.T) {
	t.Parallel()

	pl := &fakeBusPipeline{messages: make(chan pipeline.Message)}
	close(pl.messages)

	code, err := drainBus(pl)
	assert.Equal(t, 0, code)
	assert.NoError(t, err)
}

func TestDrainConsumer_StopsWhenPipeCloses(t *testing.T) {
	t.Parallel()

	producer, consumer := pipe.New()
	wait := drainConsumer(consumer)

	require.NoError(t, producer.Push(&frame.Sample{Width: 1, Height: 1, Pix: []byte{0, 0, 0}}))

	producer.Close()

	done := make(chan struct{})

	go func() {
		wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("drainConsumer did not return after the pipe closed")
	}
}

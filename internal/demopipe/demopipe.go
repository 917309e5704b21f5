// Package demopipe is a concrete [pipeline.Pipeline] used in place of a
// real decode/audio element graph: it replays a pre-decoded sequence of
// frames (extracted from a video file via ffmpeg, or loaded directly from a
// directory of PNG frames) at a fixed frame rate, on its own goroutine.
package demopipe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ansiterm/videoplayer/internal/frame"
	"github.com/ansiterm/videoplayer/internal/pipe"
	"github.com/ansiterm/videoplayer/internal/pipeline"
)

// Pipeline implements [pipeline.Pipeline] and [pipeline.AsyncDoneWaiter] by
// replaying an in-memory frame list.
type Pipeline struct {
	mu        sync.Mutex
	state     pipeline.State
	frames    []*frame.Sample
	index     int
	eosPosted bool
	frameDur  time.Duration

	producer *pipe.Producer
	messages chan pipeline.Message

	wake chan struct{}
	stop chan struct{}
	done chan struct{}

	asyncMu  sync.Mutex
	asyncSig chan struct{}

	cleanup func()
}

// New loads path (a video file or a directory of PNG frames) at fps frames
// per second and returns a ready, Null-state pipeline feeding producer.
func New(path string, fps int, producer *pipe.Producer) (*Pipeline, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("demopipe: fps must be positive, got %d", fps)
	}

	samples, cleanup, err := loadSource(path, fps)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		state:    pipeline.Null,
		frames:   samples,
		frameDur: time.Second / time.Duration(fps),
		producer: producer,
		messages: make(chan pipeline.Message, 16),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		asyncSig: make(chan struct{}),
		cleanup:  cleanup,
	}

	go p.run()

	return p, nil
}

// Close stops the replay goroutine and removes any temporary frame
// directory ffmpeg extracted. Safe to call once.
func (p *Pipeline) Close() {
	close(p.stop)
	<-p.done
	p.cleanup()
}

func (p *Pipeline) PostBus(msg pipeline.Message) {
	select {
	case p.messages <- msg:
	default:
		// Bus is a bounded buffer; a full bus means the orchestrator has
		// already stopped draining, so dropping here is harmless.
	}
}

func (p *Pipeline) Messages() <-chan pipeline.Message { return p.messages }

func (p *Pipeline) CurrentState() pipeline.State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

func (p *Pipeline) SetState(s pipeline.State) error {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}

	p.signalAsyncDone()

	return nil
}

func (p *Pipeline) Seek(_ context.Context, positionNS int64, _ bool) error {
	p.mu.Lock()

	if len(p.frames) == 0 {
		p.mu.Unlock()

		return fmt.Errorf("%w: no frames loaded", pipeline.ErrSeekFailed)
	}

	idx := int(positionNS / p.frameDur.Nanoseconds())
	if idx < 0 {
		idx = 0
	}

	if idx >= len(p.frames) {
		idx = len(p.frames) - 1
	}

	p.index = idx
	p.eosPosted = false
	sample := p.frames[idx]

	p.mu.Unlock()

	_ = p.producer.Push(sample)

	select {
	case p.wake <- struct{}{}:
	default:
	}

	p.signalAsyncDone()

	return nil
}

func (p *Pipeline) QueryPosition() (int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.frames) == 0 {
		return 0, false
	}

	return int64(p.index) * p.frameDur.Nanoseconds(), true
}

func (p *Pipeline) QueryDuration() (int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.frames) == 0 {
		return 0, false
	}

	return int64(len(p.frames)) * p.frameDur.Nanoseconds(), true
}

// WaitAsyncDone implements [pipeline.AsyncDoneWaiter]. Every [SetState] and
// [Seek] call completes synchronously from this pipeline's point of view,
// so it resolves as soon as the next such call is made after WaitAsyncDone
// starts waiting; calls made before that do not resolve it.
func (p *Pipeline) WaitAsyncDone(ctx context.Context) bool {
	p.asyncMu.Lock()
	sig := p.asyncSig
	p.asyncMu.Unlock()

	select {
	case <-sig:
		return true
	case <-ctx.Done():
		return false
	}
}

func (p *Pipeline) signalAsyncDone() {
	p.asyncMu.Lock()
	close(p.asyncSig)
	p.asyncSig = make(chan struct{})
	p.asyncMu.Unlock()

	p.PostBus(pipeline.Message{Kind: pipeline.MessageAsyncDone})
}

func (p *Pipeline) run() {
	defer close(p.done)

	ticker := time.NewTicker(p.frameDur)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-p.wake:
			continue
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *Pipeline) tick() {
	p.mu.Lock()

	if p.state != pipeline.Playing {
		p.mu.Unlock()

		return
	}

	if p.index >= len(p.frames) {
		alreadyPosted := p.eosPosted
		p.eosPosted = true
		p.mu.Unlock()

		if !alreadyPosted {
			p.PostBus(pipeline.Message{Kind: pipeline.MessageEOS})
		}

		return
	}

	sample := p.frames[p.index]
	p.index++

	p.mu.Unlock()

	_ = p.producer.Push(sample)
}

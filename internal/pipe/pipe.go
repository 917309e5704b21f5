// Package pipe implements the single-slot, latest-wins rendezvous between
// the decoder's sample-producing callback and the renderer's consuming
// loop: at most one pending sample is ever held, and a slow consumer never
// makes the producer block.
package pipe

import (
	"errors"
	"sync"
	"weak"

	"github.com/ansiterm/videoplayer/internal/frame"
)

// ErrClosed is returned by [Producer.Push] and [Consumer.Pull] once the
// pipe has been closed by either side.
var ErrClosed = errors.New("pipe: closed")

type tag int

const (
	tagNone tag = iota
	tagHasSample
	tagClosed
)

// context is the shared rendezvous state, guarded by mu. Producer and
// Consumer each hold a strong reference to it; Reloader holds only a weak
// reference so it can never keep the rendezvous alive on its own (it would
// otherwise form a reference cycle back from the terminal-size updater
// into the render path).
type context struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tag    tag
	sample *frame.Sample
	pulled bool
}

// New creates a fresh rendezvous and returns its producer and consumer
// ends.
func New() (*Producer, *Consumer) {
	ctx := &context{}
	ctx.cond = sync.NewCond(&ctx.mu)

	return &Producer{ctx: ctx}, &Consumer{ctx: ctx}
}

// Producer is the decoder-callback side of the rendezvous.
type Producer struct {
	ctx *context
}

// Push hands off a new sample. If the renderer hasn't yet pulled the
// previously pushed sample, it is overwritten in place (latest-wins; no
// wake, since the consumer is already due to look again). Returns
// [ErrClosed] if the pipe has been closed.
func (p *Producer) Push(sample *frame.Sample) error {
	ctx := p.ctx
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	switch {
	case ctx.tag == tagClosed:
		return ErrClosed
	case ctx.tag == tagHasSample && !ctx.pulled:
		ctx.sample = sample
	default:
		ctx.tag = tagHasSample
		ctx.sample = sample
		ctx.pulled = false
		ctx.cond.Signal()
	}

	return nil
}

// Close tears down the rendezvous: any blocked or future [Consumer.Pull]
// returns [ErrClosed]. Idempotent.
func (p *Producer) Close() {
	ctx := p.ctx
	ctx.mu.Lock()
	ctx.tag = tagClosed
	ctx.mu.Unlock()
	ctx.cond.Signal()
}

// Consumer is the render-loop side of the rendezvous.
type Consumer struct {
	ctx *context
}

// Pull blocks until a fresh (not-yet-pulled) sample is available and
// returns a clone of it, or returns [ErrClosed] once the pipe is closed.
func (c *Consumer) Pull() (*frame.Sample, error) {
	ctx := c.ctx
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	for {
		switch {
		case ctx.tag == tagClosed:
			return nil, ErrClosed
		case ctx.tag == tagHasSample && !ctx.pulled:
			ctx.pulled = true

			return ctx.sample.Clone(), nil
		default:
			ctx.cond.Wait()
		}
	}
}

// Close tears down the rendezvous from the consumer side; behaves exactly
// like [Producer.Close]. Idempotent.
func (c *Consumer) Close() {
	ctx := c.ctx
	ctx.mu.Lock()
	ctx.tag = tagClosed
	ctx.mu.Unlock()
	ctx.cond.Signal()
}

// MakeReloader returns a [Reloader] holding only a weak reference to this
// rendezvous.
func (c *Consumer) MakeReloader() *Reloader {
	return &Reloader{weak: weak.Make(c.ctx)}
}

// Reloader lets the terminal-size updater force the renderer to re-render
// the currently-held sample (e.g. after a resize while paused), without
// keeping the rendezvous alive by itself.
type Reloader struct {
	weak weak.Pointer[context]
}

// Reload marks the currently-held sample (if any) as not-yet-pulled and
// wakes the consumer. A no-op if no sample is held. Returns [ErrClosed] if
// the pipe is closed, or if the rendezvous has since been garbage
// collected (both ends dropped).
func (r *Reloader) Reload() error {
	ctx := r.weak.Value()
	if ctx == nil {
		return ErrClosed
	}

	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	switch ctx.tag {
	case tagNone:
		return nil
	case tagHasSample:
		ctx.pulled = false
		ctx.cond.Signal()

		return nil
	default:
		return ErrClosed
	}
}

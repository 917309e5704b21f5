// Package input runs the keyboard control loop: a dedicated goroutine
// reads raw key sequences from standard input and translates them into
// seek/pause/resume/quit requests against the pipeline.
package input

import (
	"bufio"
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/ansiterm/videoplayer/internal/pipeline"
)

const (
	defaultSeekSeconds = 5
	asyncDoneTimeout   = 50 * time.Millisecond
	pollInterval       = 100 * time.Millisecond
)

// Handler owns the input goroutine's lifecycle.
type Handler struct {
	stop     chan struct{}
	done     chan struct{}
	oldState *term.State
	fd       int
	isTTY    bool
}

// Options configures [Start].
type Options struct {
	// SeekSeconds is how far Left/Right arrows seek; zero uses the default
	// of 5 seconds.
	SeekSeconds int
}

// Start puts stdin into raw (canonical-off) mode and spawns the input
// goroutine. Call [Handler.Stop] to end it and restore stdin.
func Start(pl pipeline.Pipeline, opts Options) (*Handler, error) {
	seekSeconds := opts.SeekSeconds
	if seekSeconds == 0 {
		seekSeconds = defaultSeekSeconds
	}

	fd := int(os.Stdin.Fd())

	h := &Handler{
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
		fd:    fd,
		isTTY: term.IsTerminal(fd),
	}

	if h.isTTY {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, err
		}

		h.oldState = state
	}

	go h.run(pl, seekSeconds)

	return h, nil
}

// Stop ends the input goroutine and restores stdin's previous terminal
// state. Safe to call once.
func (h *Handler) Stop() {
	close(h.stop)
	<-h.done

	if h.isTTY && h.oldState != nil {
		_ = term.Restore(h.fd, h.oldState)
	}
}

func (h *Handler) run(pl pipeline.Pipeline, seekSeconds int) {
	defer close(h.done)

	_ = os.Stdin.SetReadDeadline(time.Time{})

	r := bufio.NewReader(&deadlineReader{f: os.Stdin, interval: pollInterval})

	for {
		select {
		case <-h.stop:
			return
		default:
		}

		if pl.CurrentState() == pipeline.Null {
			return
		}

		key, ok := readKey(r)
		if !ok {
			continue
		}

		if h.handleKey(pl, key, seekSeconds) {
			return
		}
	}
}

// handleKey applies one decoded key to the pipeline and reports whether the
// input loop should terminate (a quit key was pressed).
func (h *Handler) handleKey(pl pipeline.Pipeline, key keyEvent, seekSeconds int) bool {
	switch key {
	case keyRight:
		seekRelative(pl, seekSeconds)
	case keyLeft:
		seekRelative(pl, -seekSeconds)
	case keySpace:
		toggle(pl)
	case keyUp:
		setState(pl, pipeline.Playing)
	case keyDown:
		setState(pl, pipeline.Paused)
	case keyQuit:
		pl.PostBus(pipeline.Message{Kind: pipeline.MessageEOS})

		return true
	}

	return false
}

func toggle(pl pipeline.Pipeline) {
	switch pl.CurrentState() {
	case pipeline.Playing:
		setState(pl, pipeline.Paused)
	case pipeline.Paused:
		setState(pl, pipeline.Playing)
	}
}

func setState(pl pipeline.Pipeline, s pipeline.State) {
	if err := pl.SetState(s); err != nil {
		pl.PostBus(pipeline.Message{Kind: pipeline.MessageError, Err: err})
	}
}

// seekRelative seeks by offsetSeconds (negative seeks backward), clamping
// at 0 and (if known) duration. If the pipeline is paused, it briefly plays
// to produce a visible preview frame, waiting up to 50ms for an
// AsyncDone-equivalent signal before returning to paused. This preview is a
// quality-of-life behavior, not required for correctness (see spec's Open
// Question on seek/pause preview).
func seekRelative(pl pipeline.Pipeline, offsetSeconds int) {
	position, ok := pl.QueryPosition()
	if !ok {
		return
	}

	const nsPerSecond = int64(time.Second)

	newPosition := position + int64(offsetSeconds)*nsPerSecond
	if newPosition < 0 {
		newPosition = 0
	}

	if duration, ok := pl.QueryDuration(); ok && newPosition > duration {
		newPosition = duration
	}

	wasPaused := pl.CurrentState() == pipeline.Paused

	err := pl.Seek(context.Background(), newPosition, true)
	if err != nil {
		pl.PostBus(pipeline.Message{Kind: pipeline.MessageError, Err: err})

		return
	}

	if !wasPaused {
		return
	}

	if waiter, ok := pl.(pipeline.AsyncDoneWaiter); ok {
		ctx, cancel := context.WithTimeout(context.Background(), asyncDoneTimeout)
		defer cancel()

		setState(pl, pipeline.Playing)
		waiter.WaitAsyncDone(ctx)
		setState(pl, pipeline.Paused)
	}
}

var errDeadlineExceeded = errors.New("input: read deadline exceeded")

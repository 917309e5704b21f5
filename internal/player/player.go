// Package player implements the orchestrator: it wires the video pipe, the
// render loop and the input handler to a [pipeline.Pipeline] collaborator,
// drives the pipeline to Playing, drains its message bus until an error or
// end-of-stream, and tears everything down in reverse order.
package player

import (
	"fmt"
	"os"
	"time"

	"github.com/ansiterm/videoplayer/internal/input"
	"github.com/ansiterm/videoplayer/internal/pipe"
	"github.com/ansiterm/videoplayer/internal/pipeline"
	"github.com/ansiterm/videoplayer/internal/renderloop"
)

// Options configures [Run].
type Options struct {
	Render      renderloop.Options
	Size        *[2]uint16 // non-nil when a fixed size was given (--size or the config file)
	ResizeEvery int64      // terminal-size poll interval, in milliseconds; 0 uses renderloop's default
	InputSeek   int        // seconds; 0 uses input's default
	NoDisplay   bool
	// NoAudio is accepted for parity with the external NO_AUDIO_OUTPUT
	// toggle but otherwise unused: this build constructs no audio sink, so
	// there is nothing to silence.
	NoAudio bool
}

// Run drives the rendering core around pl, which must already be feeding
// producer (the caller owns pipe construction so it can wire producer into
// its concrete [pipeline.Pipeline] before calling Run). It blocks until the
// pipeline reports End-Of-Stream or a fatal error, and returns the process
// exit code: 0 on clean end-of-stream or user quit, non-zero otherwise.
func Run(pl pipeline.Pipeline, producer *pipe.Producer, consumer *pipe.Consumer, opts Options) int {
	teardown := newTeardownStack()
	defer teardown.run()

	teardown.push(func() { _ = pl.SetState(pipeline.Null) })

	if !opts.NoDisplay {
		rl, err := startRenderLoop(pl, consumer, opts, teardown)
		if err != nil {
			fmt.Fprintln(os.Stderr, "videoplayer:", err)

			return 1
		}

		renderErrCh := make(chan error, 1)

		go func() { renderErrCh <- rl.Run() }()

		teardown.push(func() { <-renderErrCh })
	} else {
		teardown.push(drainConsumer(consumer))
	}

	teardown.push(func() { producer.Close() })

	// The input loop exits as soon as it sees a Null pipeline, so the
	// pipeline must be Playing before the handler starts.
	if err := pl.SetState(pipeline.Playing); err != nil {
		fmt.Fprintln(os.Stderr, "videoplayer:", err)

		return 1
	}

	ih, err := input.Start(pl, input.Options{SeekSeconds: opts.InputSeek})
	if err != nil {
		fmt.Fprintln(os.Stderr, "videoplayer:", err)

		return 1
	}

	teardown.push(ih.Stop)

	code, busErr := drainBus(pl)

	// Restore the terminal (alt-screen, raw mode) before printing anything,
	// so a bus error never lands on top of the still-active alternate
	// screen: clear first, diagnose after.
	teardown.run()

	if busErr != nil {
		fmt.Fprintln(os.Stderr, "videoplayer:", busErr)
	}

	return code
}

// startRenderLoop builds the size loader, opens the render target through
// [renderloop.New], and pushes the loop's Close onto teardown once the open
// has succeeded.
func startRenderLoop(
	pl pipeline.Pipeline,
	consumer *pipe.Consumer,
	opts Options,
	teardown *teardownStack,
) (*renderloop.RenderLoop, error) {
	var (
		rl  *renderloop.RenderLoop
		err error
	)

	if opts.Size != nil {
		sizer := renderloop.NewStaticSize(opts.Size[0], opts.Size[1])
		rl, err = renderloop.New(consumer, sizer, opts.Render)
	} else {
		interval := opts.ResizeEvery
		if interval == 0 {
			interval = defaultResizePollMillis
		}

		sizer := renderloop.NewDynamicSize(
			time.Duration(interval)*time.Millisecond,
			int(os.Stdout.Fd()),
			func() bool { return pl.CurrentState() == pipeline.Paused },
			consumer.MakeReloader(),
		)
		rl, err = renderloop.New(consumer, sizer, opts.Render)
	}

	if err != nil {
		return nil, err
	}

	teardown.push(rl.Close)

	return rl, nil
}

// drainConsumer pulls and discards samples until the pipe closes, matching
// "the sample callback still drains but no TTY is opened" when display
// output is disabled.
func drainConsumer(consumer *pipe.Consumer) func() {
	done := make(chan struct{})

	go func() {
		defer close(done)

		for {
			if _, err := consumer.Pull(); err != nil {
				return
			}
		}
	}()

	return func() { <-done }
}

// drainBus reads pl's message bus until an Error or EOS message arrives and
// returns the corresponding exit code. On MessageError it also returns the
// error so the caller can print it after the terminal has been restored.
func drainBus(pl pipeline.Pipeline) (code int, err error) {
	for msg := range pl.Messages() {
		switch msg.Kind {
		case pipeline.MessageError:
			return 1, msg.Err
		case pipeline.MessageEOS:
			return 0, nil
		case pipeline.MessageAsyncDone:
			continue
		}
	}

	return 0, nil
}

const defaultResizePollMillis = 200

package renderloop

import (
	"io"
	"os"

	"golang.org/x/term"
)

const (
	seqClearAll     = "\x1b[2J"
	seqHideCursor   = "\x1b[?25l"
	seqShowCursor   = "\x1b[?25h"
	seqEnterAltScrn = "\x1b[?1049h"
	seqLeaveAltScrn = "\x1b[?1049l"
)

// tty is the writable terminal handle the render loop owns exclusively. It
// is responsible for raw mode and alternate-screen entry/exit, the only two
// pieces of process-wide terminal state this package touches.
type tty struct {
	w        io.Writer
	closer   io.Closer
	fd       int
	oldState *term.State
	isTTY    bool
}

// openTTY opens the render target: a controlling TTY unless useStdout is
// true or none can be opened, in which case standard output is used
// instead. Both paths are put into raw mode and the alternate screen.
func openTTY(useStdout bool) (*tty, error) {
	var (
		w  io.Writer
		c  io.Closer
		fd int
	)

	if !useStdout {
		if f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0); err == nil {
			w, c, fd = f, f, int(f.Fd())
		}
	}

	if w == nil {
		w, fd = os.Stdout, int(os.Stdout.Fd())
	}

	t := &tty{w: w, closer: c, fd: fd, isTTY: term.IsTerminal(fd)}

	if t.isTTY {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, err
		}

		t.oldState = state
	}

	if _, err := io.WriteString(t.w, seqEnterAltScrn+seqHideCursor); err != nil {
		t.restore()

		return nil, err
	}

	return t, nil
}

func (t *tty) write(buf []byte) error {
	_, err := t.w.Write(buf)

	return err
}

// restore shows the cursor, leaves the alternate screen, restores the
// previous termios state, and closes the handle if it owns one. It is
// called by [RenderLoop.Close] and by openTTY when setup fails; the loop's
// Run does not call it itself.
func (t *tty) restore() {
	_, _ = io.WriteString(t.w, seqShowCursor+seqLeaveAltScrn)

	if t.isTTY && t.oldState != nil {
		_ = term.Restore(t.fd, t.oldState)
	}

	if t.closer != nil {
		_ = t.closer.Close()
	}
}

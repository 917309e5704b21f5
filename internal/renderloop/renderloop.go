// Package renderloop owns the TTY and drives the resize -> diff -> write
// pipeline once per pulled sample: it assembles exactly one ANSI frame
// per sample pulled off the video pipe.
package renderloop

import (
	"errors"

	"github.com/ansiterm/videoplayer/internal/frame"
	"github.com/ansiterm/videoplayer/internal/pipe"
	"github.com/ansiterm/videoplayer/internal/render"
	"github.com/ansiterm/videoplayer/internal/resize"
)

const initialCmdBufCap = 8 * 1024 * 1024

// RenderLoop owns the TTY in raw + alternate-screen mode and everything
// needed to turn a pulled sample into a written ANSI frame: a reusable
// command buffer, a [resize.Resizer], the last drawn [render.RenderedFrame],
// the sample consumer, and a terminal-size loader.
type RenderLoop struct {
	tty      *tty
	cmd      []byte
	resizer  *resize.Resizer
	lastFrm  *render.RenderedFrame
	consumer *pipe.Consumer
	sizer    sizeLoader
}

// Options configures [New].
type Options struct {
	// UseStdout forces the loop to render to standard output instead of
	// opening a controlling TTY (set from the USE_STDOUT env var).
	UseStdout bool
	MaskBits  uint8
}

// New opens the render target (see [Options.UseStdout]) and returns a ready
// [RenderLoop]. The caller must eventually call [RenderLoop.Close].
func New(consumer *pipe.Consumer, sizer sizeLoader, opts Options) (*RenderLoop, error) {
	t, err := openTTY(opts.UseStdout)
	if err != nil {
		return nil, err
	}

	maskBits := opts.MaskBits
	if maskBits == 0 {
		maskBits = render.DefaultMaskBits
	}

	return &RenderLoop{
		tty:      t,
		cmd:      make([]byte, 0, initialCmdBufCap),
		resizer:  resize.New(),
		lastFrm:  render.New().WithMaskBits(maskBits),
		consumer: consumer,
		sizer:    sizer,
	}, nil
}

// Close releases the render target: shows the cursor, leaves the
// alternate screen, restores terminal state, and stops the size loader.
// Safe to call once after [New] regardless of how the loop exited.
func (rl *RenderLoop) Close() {
	rl.tty.restore()
	rl.sizer.close()
}

// Run pulls samples and writes rendered frames until the pipe closes or a
// write to the TTY fails. It returns nil on a clean pipe close.
func (rl *RenderLoop) Run() error {
	for {
		sample, err := rl.consumer.Pull()
		if err != nil {
			if errors.Is(err, pipe.ErrClosed) {
				return nil
			}

			return err
		}

		if err := rl.renderOne(sample); err != nil {
			return err
		}
	}
}

func (rl *RenderLoop) renderOne(sample *frame.Sample) error {
	rl.cmd = rl.cmd[:0]

	image, ok := sample.Image()
	if !ok {
		return errInvalidSample
	}

	cols, rows, sizeChanged := rl.sizer.load()

	pixW := cols
	pixH := saturatingMul2(rows)

	w, h := image.Size()
	dw, dh := resize.Dimensions(w, h, uint32(pixW), uint32(pixH), false)

	resized := rl.resizer.Resize(image, [2]uint16{uint16(dw), uint16(dh)})

	offset := render.Offset{
		X: halfSaturatingSub(cols, uint16(dw)),
		Y: halfSaturatingSub(rows, uint16(ceilDiv2(dh))),
	}

	expected := len(resized.Pixels())*48 + int(ceilDiv2(dh))*24 + 512
	if cap(rl.cmd) < expected {
		grown := make([]byte, 0, expected)
		rl.cmd = grown
	}

	rl.cmd = rl.lastFrm.Render(resized, sizeChanged, offset, rl.cmd)

	return rl.tty.write(rl.cmd)
}

func saturatingMul2(n uint16) uint16 {
	const maxU16 = ^uint16(0)
	if n > maxU16/2 {
		return maxU16
	}

	return n * 2
}

func halfSaturatingSub(total, used uint16) uint16 {
	if used >= total {
		return 0
	}

	return (total - used) / 2
}

func ceilDiv2(n uint32) uint32 {
	return (n + 1) / 2
}

var errInvalidSample = errors.New("renderloop: sample dimensions do not match its pixel buffer")

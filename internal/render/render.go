// Package render holds the last drawn terminal cell grid and computes the
// minimal ANSI command stream needed to reach a new frame: a full overwrite
// on resize/first-frame, or a column-run diff against the previous frame
// otherwise. Color is quantized before comparison and emission so the diff
// is stable against upstream dithering and the worst-case payload is
// bounded.
package render

import (
	"github.com/ansiterm/videoplayer/internal/frame"
	"github.com/ansiterm/videoplayer/internal/matrix"
)

// DefaultMaskBits is the default color quantization width: the top 5 bits
// of each channel are kept. Implementations may parameterize this, but the
// default MUST stay 5 unless paired with a compressing encoder.
const DefaultMaskBits = 5

// Offset is a zero-based terminal cell position.
type Offset struct {
	X, Y uint16
}

// RenderedFrame is the last cell grid we told the terminal to display.
//
// Create instances with [New].
type RenderedFrame struct {
	frame    matrix.PodMatrix[Cell]
	maskBits uint8
}

// New returns an empty [RenderedFrame] using [DefaultMaskBits] quantization.
func New() *RenderedFrame {
	return &RenderedFrame{frame: matrix.New[Cell](), maskBits: DefaultMaskBits}
}

// WithMaskBits overrides the color quantization width (bits kept per
// channel, 1-8). Intended for tests and for the rare deployment that pairs a
// non-default mask with its own compressing encoder.
func (f *RenderedFrame) WithMaskBits(bits uint8) *RenderedFrame {
	f.maskBits = bits

	return f
}

func (f *RenderedFrame) quantize(p frame.RGB8) frame.RGB8 {
	return p.Quantize(f.maskBits)
}

// Render computes and appends the ANSI command stream needed to make the
// terminal show image at offset, given the previously rendered frame. When
// overwrite is true (or the target cell grid size changed since the last
// render), the whole grid is repainted with a clear-all prefix; otherwise
// only cells whose quantized pixels changed are repainted, with cursor
// moves emitted only where a changed run starts. A trailing SGR reset is
// always appended.
func (f *RenderedFrame) Render(image frame.ImageRef, overwrite bool, offset Offset, out []byte) []byte {
	out = f.renderInner(image, overwrite, offset, out)

	return append(out, "\x1b[0m"...)
}

func (f *RenderedFrame) renderInner(image frame.ImageRef, overwrite bool, offset Offset, out []byte) []byte {
	width, height := image.Size()
	cellGrid := [2]uint16{uint16(width), uint16(ceilDiv2(height))}

	if cellGrid != f.frame.Size() {
		f.frame.Resize(cellGrid[0], cellGrid[1])
		overwrite = true
	}

	if overwrite {
		out = append(out, "\x1b[2J"...)

		return f.overwriteAll(image, offset, out)
	}

	return f.diff(image, offset, out)
}

func ceilDiv2(n uint32) uint32 {
	return (n + 1) / 2
}

func (f *RenderedFrame) writeMove(out []byte, offset Offset, i, j uint16) []byte {
	return cursorGoto(out, offset.X+i, offset.Y+j)
}

func (f *RenderedFrame) overwriteAll(image frame.ImageRef, offset Offset, out []byte) []byte {
	width, height := image.Size()

	for j := uint32(0); j < height; j++ {
		for i := uint32(0); i < width; i++ {
			rgb := f.quantize(image.GetPixelUnchecked(i, j))
			cell := f.frame.GetMutUnchecked(uint16(i), uint16(j/2))

			if j%2 == 0 {
				cell.Top = rgb
			} else {
				cell.Bottom = rgb
			}
		}
	}

	if height%2 != 0 {
		for i := uint16(0); i < uint16(width); i++ {
			f.frame.GetMutUnchecked(i, uint16(height/2)).Bottom = frame.RGB8{}
		}
	}

	termWidth, termHeight := f.frame.Size()

	for j := uint16(0); j < termHeight; j++ {
		out = f.writeMove(out, offset, 0, j)

		for i := uint16(0); i < termWidth; i++ {
			out = f.frame.GetMutUnchecked(i, j).draw(out)
		}
	}

	return out
}

func (f *RenderedFrame) diff(image frame.ImageRef, offset Offset, out []byte) []byte {
	width, height := image.Size()

	for j := uint32(0); j < height/2; j++ {
		lastChanged := false

		for i := uint32(0); i < width; i++ {
			rgbT := f.quantize(image.GetPixelUnchecked(i, j*2))
			rgbB := f.quantize(image.GetPixelUnchecked(i, j*2+1))

			ii, jj := uint16(i), uint16(j)
			cell := f.frame.GetMutUnchecked(ii, jj)

			if cell.Top != rgbT || cell.Bottom != rgbB {
				if !lastChanged {
					out = f.writeMove(out, offset, ii, jj)
					lastChanged = true
				}

				cell.Top, cell.Bottom = rgbT, rgbB
				out = cell.draw(out)

				continue
			}

			lastChanged = false
		}
	}

	if height%2 != 0 {
		j := height / 2
		lastChanged := false

		for i := uint32(0); i < width; i++ {
			rgbT := f.quantize(image.GetPixelUnchecked(i, j*2))

			ii, jj := uint16(i), uint16(j)
			cell := f.frame.GetMutUnchecked(ii, jj)

			if cell.Top != rgbT {
				if !lastChanged {
					out = f.writeMove(out, offset, ii, jj)
					lastChanged = true
				}

				cell.Top = rgbT
				out = cell.draw(out)

				continue
			}

			lastChanged = false
		}
	}

	return out
}

// Package resize scales decoded video frames into the terminal's available
// pixel grid using a triangle-filter bilinear resampler, matching the
// scaling kernel the teacher's ANSI renderer uses
// (golang.org/x/image/draw.ApproxBiLinear), with a cached destination
// buffer so the steady-state render path does no per-frame allocation.
package resize

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/ansiterm/videoplayer/internal/frame"
	"github.com/ansiterm/videoplayer/internal/matrix"
)

// Resizer caches a destination pixel buffer and re-grows it only when the
// requested destination size changes.
//
// Create instances with [New].
type Resizer struct {
	dest matrix.PodMatrix[frame.RGB8]
}

// New returns a ready-to-use [Resizer] with no cached destination buffer.
func New() *Resizer {
	return &Resizer{dest: matrix.New[frame.RGB8]()}
}

// Resize scales src to dstSize, preserving aspect ratio is the caller's
// responsibility (dstSize is expected to already be the aspect-correct
// target; see [Dimensions]). Contract:
//
//   - if src.Size() == dstSize, src is returned unchanged (no copy).
//   - if dstSize has a zero axis, the empty image is returned.
//   - if src is empty, the destination is zeroed and returned.
//   - otherwise the destination buffer is grown/shrunk to dstSize if
//     needed, then src is scaled into it with a triangle (bilinear) filter.
func (r *Resizer) Resize(src frame.ImageRef, dstSize [2]uint16) frame.ImageRef {
	srcW, srcH := src.Size()

	if uint64(srcW) == uint64(dstSize[0]) && uint64(srcH) == uint64(dstSize[1]) {
		return src
	}

	if dstSize[0] == 0 || dstSize[1] == 0 {
		return frame.Empty
	}

	if r.dest.Size() != dstSize {
		r.dest.Resize(dstSize[0], dstSize[1])
	}

	if _, _, nonEmpty := src.NonZeroSize(); !nonEmpty {
		clear(r.dest.Cells())

		return frame.FromPixels(uint32(dstSize[0]), uint32(dstSize[1]), r.dest.Cells())
	}

	srcImg := &rgbImage{w: int(srcW), h: int(srcH), pix: src.Pixels()}
	dstImg := &rgbImage{w: int(dstSize[0]), h: int(dstSize[1]), pix: r.dest.Cells()}

	draw.ApproxBiLinear.Scale(dstImg, dstImg.Bounds(), srcImg, srcImg.Bounds(), draw.Src, nil)

	return frame.FromPixels(uint32(dstSize[0]), uint32(dstSize[1]), r.dest.Cells())
}

// rgbImage adapts a flat []frame.RGB8 buffer to image.Image/draw.Image so
// the standard bilinear scaler can read from and write to it directly,
// without an intermediate *image.RGBA copy.
type rgbImage struct {
	w, h int
	pix  []frame.RGB8
}

func (m *rgbImage) ColorModel() color.Model { return color.RGBAModel }

func (m *rgbImage) Bounds() image.Rectangle { return image.Rect(0, 0, m.w, m.h) }

func (m *rgbImage) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return color.RGBA{}
	}

	p := m.pix[y*m.w+x]

	return color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xFF}
}

func (m *rgbImage) Set(x, y int, c color.Color) {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return
	}

	r, g, b, _ := c.RGBA()
	m.pix[y*m.w+x] = frame.RGB8{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

package render

import "github.com/ansiterm/videoplayer/internal/frame"

// halfBlock is U+2580 ("▀"), UTF-8 encoded: the top half of a terminal cell,
// used with foreground/background SGR colors to encode two stacked pixels.
var halfBlock = []byte{0xE2, 0x96, 0x80}

// Cell is one terminal character position: two vertically stacked pixels,
// rendered as the upper-half-block character with Top as foreground color
// and Bottom as background color.
type Cell struct {
	Top, Bottom frame.RGB8
}

// draw appends the exact byte sequence that paints this cell: a truecolor
// foreground SGR, a truecolor background SGR, then the half-block glyph.
func (c Cell) draw(buf []byte) []byte {
	buf = append(buf, "\x1b[38;2;"...)
	buf = appendUint8(buf, c.Top.R)
	buf = append(buf, ';')
	buf = appendUint8(buf, c.Top.G)
	buf = append(buf, ';')
	buf = appendUint8(buf, c.Top.B)
	buf = append(buf, 'm')

	buf = append(buf, "\x1b[48;2;"...)
	buf = appendUint8(buf, c.Bottom.R)
	buf = append(buf, ';')
	buf = appendUint8(buf, c.Bottom.G)
	buf = append(buf, ';')
	buf = appendUint8(buf, c.Bottom.B)
	buf = append(buf, 'm')

	return append(buf, halfBlock...)
}

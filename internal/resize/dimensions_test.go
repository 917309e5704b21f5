package resize_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ansiterm/videoplayer/internal/resize"
)

func TestDimensions_ZeroDestinationFit(t *testing.T) {
	t.Parallel()

	w, h := resize.Dimensions(100, 100, 0, 0, false)
	assert.Equal(t, uint32(1), w)
	assert.Equal(t, uint32(1), h)
}

func TestDimensions_ZeroSourceAxis(t *testing.T) {
	t.Parallel()

	w, h := resize.Dimensions(0, 100, 100, 100, false)
	assert.Equal(t, uint32(1), w)
	assert.Equal(t, uint32(100), h)
}

func TestDimensions_Fill(t *testing.T) {
	t.Parallel()

	w, h := resize.Dimensions(100, 200, 200, 500, true)
	assert.Equal(t, uint32(250), w)
	assert.Equal(t, uint32(500), h)

	w, h = resize.Dimensions(200, 100, 500, 200, true)
	assert.Equal(t, uint32(500), w)
	assert.Equal(t, uint32(250), h)
}

func TestDimensions_ClampsAtU32Max(t *testing.T) {
	t.Parallel()

	const maxU32 = math.MaxUint32

	w, h := resize.Dimensions(100, maxU32, 200, maxU32, true)
	assert.Equal(t, uint32(100), w)
	assert.Equal(t, uint32(maxU32), h)
}

func TestDimensions_RealWorldAspectRatios(t *testing.T) {
	t.Parallel()

	w, h := resize.Dimensions(4264, 2476, 3840, 2160, true)
	assert.Equal(t, uint32(3840), w)
	assert.Equal(t, uint32(2230), h)

	w, h = resize.Dimensions(2476, 4264, 2160, 3840, false)
	assert.Equal(t, uint32(2160), w)
	assert.Equal(t, uint32(3720), h)
}

func TestDimensions_FillRoundTrip(t *testing.T) {
	t.Parallel()

	const w, h = 640, 360
	const nw, nh = 123, 456

	dw, dh := resize.Dimensions(w, h, nw, nh, true)

	// Scaling back by the reciprocal ratio should return within ±1 of the
	// original dimensions.
	bw, bh := resize.Dimensions(dw, dh, w, h, true)

	assert.InDelta(t, w, bw, 1)
	assert.InDelta(t, h, bh, 1)
}

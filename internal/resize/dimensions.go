package resize

// Dimensions calculates the width and height an image should be resized to.
// This preserves aspect ratio; when fill is true the result fills the
// smaller constraint (overflowing the other axis to preserve aspect ratio);
// when false both dimensions stay completely contained within newWidth x
// newHeight, leaving empty space on one axis.
//
// Ported from the image crate's resize_dimensions, credited in the upstream
// player's resize_image module.
func Dimensions(width, height, newWidth, newHeight uint32, fill bool) (uint32, uint32) {
	wRatio := float64(newWidth) / float64(width)
	hRatio := float64(newHeight) / float64(height)

	ratio := min(wRatio, hRatio)
	if fill {
		ratio = max(wRatio, hRatio)
	}

	newW := max(uint64(round(float64(width)*ratio)), 1)
	newH := max(uint64(round(float64(height)*ratio)), 1)

	const maxU32 = uint64(^uint32(0))

	switch {
	case newW > maxU32:
		r := float64(^uint32(0)) / float64(width)

		return ^uint32(0), uint32(max(uint64(round(float64(height)*r)), 1))
	case newH > maxU32:
		r := float64(^uint32(0)) / float64(height)

		return uint32(max(uint64(round(float64(width)*r)), 1)), ^uint32(0)
	default:
		return uint32(newW), uint32(newH)
	}
}

func round(f float64) float64 {
	if f < 0 {
		return -round(-f)
	}

	const half = 0.5

	return float64(int64(f + half))
}

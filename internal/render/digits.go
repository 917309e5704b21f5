package render

// digitLUT precomputes the decimal ASCII encoding of every byte value so the
// hot per-pixel ANSI emission path never calls strconv.Itoa. Mirrors the
// small-precomputed-table style the teacher favors over reflection-heavy
// formatting in its hot paths.
var digitLUT = func() (lut [256][3]byte) {
	for i := range lut {
		switch {
		case i >= 100:
			lut[i] = [3]byte{'0' + byte(i/100), '0' + byte(i/10%10), '0' + byte(i%10)}
		case i >= 10:
			lut[i] = [3]byte{'0' + byte(i/10), '0' + byte(i%10), 0}
		default:
			lut[i] = [3]byte{'0' + byte(i), 0, 0}
		}
	}

	return lut
}()

func digitLen(n uint8) int {
	switch {
	case n >= 100:
		return 3
	case n >= 10:
		return 2
	default:
		return 1
	}
}

// appendUint8 appends n's decimal ASCII representation to buf, without
// leading zeros.
func appendUint8(buf []byte, n uint8) []byte {
	return append(buf, digitLUT[n][:digitLen(n)]...)
}

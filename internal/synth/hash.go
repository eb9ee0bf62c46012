package synth

import "unicode/utf16"

// Hash derives the seed for a location name. It runs the classic
// h = h*31 + c string hash over UTF-16 code units with 32-bit wraparound and
// returns the absolute value, so the empty string hashes to 0 and
// math.MinInt32 maps to 2147483648.
func Hash(name string) uint32 {
	var h int32
	for _, c := range utf16.Encode([]rune(name)) {
		h = (h << 5) - h + int32(c)
	}
	if h < 0 {
		return uint32(-int64(h))
	}
	return uint32(h)
}

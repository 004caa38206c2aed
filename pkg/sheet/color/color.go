// Package color normalizes user-supplied hex colors and derives the pale lane
// backgrounds used in exported spreadsheets.
//
// Diagram colors are user data, so nothing in this package returns an error:
// malformed input degrades to a caller-chosen fallback.
package color

import (
	"math"
	"strconv"
	"strings"
)

// White is the 6-digit hex value of pure white.
const White = "FFFFFF"

// NormalizeHex converts a "#"-prefixed or bare 3- or 6-digit hex color into
// upper-case 6-digit form without the "#". Three-digit input has each digit
// duplicated ("#1a2" becomes "11AA22"). Any other input, including input
// with surrounding whitespace, returns fallback unchanged.
func NormalizeHex(input, fallback string) string {
	s := strings.TrimPrefix(input, "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return fallback
	}
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return fallback
		}
	}
	return strings.ToUpper(s)
}

// Lighten moves each RGB channel of hex toward 255 by factor:
// c' = c + (255-c)*factor. A factor of 0 is the identity and 1 yields white.
// Factors outside [0, 1] extrapolate; the result is only clamped to the byte
// range so that it remains encodable. hex must already be normalized; other
// input is treated as black.
func Lighten(hex string, factor float64) string {
	r, g, b := channels(hex)
	return encode(mix(r, factor), mix(g, factor), mix(b, factor))
}

func mix(c uint8, factor float64) uint8 {
	v := math.Round(float64(c) + (255-float64(c))*factor)
	return uint8(math.Max(0, math.Min(255, v)))
}

func channels(hex string) (r, g, b uint8) {
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || len(hex) != 6 {
		return 0, 0, 0
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}

func encode(r, g, b uint8) string {
	const digits = "0123456789ABCDEF"
	out := []byte{
		digits[r>>4], digits[r&0x0f],
		digits[g>>4], digits[g&0x0f],
		digits[b>>4], digits[b&0x0f],
	}
	return string(out)
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

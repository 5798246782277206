// Package palette samples colors from raw pixel buffers and compares colors
// with a low-cost perceptual distance.
package palette

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidHex is returned when a color string is not #RRGGBB.
var ErrInvalidHex = errors.New("invalid hex color")

// Redmean coefficients. The red and blue weights move with the mean redness of
// the two colors; the green weight is fixed.
const (
	redmeanRedBase  = 512.0
	redmeanBlueBase = 767.0
	redmeanGreen    = 4.0
	redmeanScale    = 256.0
)

// MaxDistance is the redmean distance between black and white. The red and blue
// weights always sum to the same value, so no pair of colors is farther apart.
var MaxDistance = math.Sqrt((redmeanRedBase+redmeanBlueBase)*255*255/redmeanScale + redmeanGreen*255*255)

// Color is an opaque 8-bit RGB color.
type Color struct {
	R, G, B uint8
}

// Hex returns the color as #RRGGBB.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c Color) String() string {
	return c.Hex()
}

// ParseHex parses "#RRGGBB" or "RRGGBB" (case-insensitive).
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MustParseHex is ParseHex for literals; it panics on malformed input.
func MustParseHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Distance computes the redmean approximation of perceptual color difference.
// The red term is weighted up and the blue term down as the pair gets redder.
func Distance(a, b Color) float64 {
	rmean := (float64(a.R) + float64(b.R)) / 2
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)

	sum := (redmeanRedBase+rmean)*dr*dr/redmeanScale +
		redmeanGreen*dg*dg +
		(redmeanBlueBase-rmean)*db*db/redmeanScale
	return math.Sqrt(sum)
}

// Similarity returns 1 - normalized redmean distance, in [0, 1].
// Identical colors score 1, black vs white scores 0.
func Similarity(a, b Color) float64 {
	s := 1 - Distance(a, b)/MaxDistance
	return min(max(s, 0), 1)
}

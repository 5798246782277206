package palette

import (
	"errors"
	"fmt"
	"image"
	"math"
)

var (
	// ErrInvalidRegion is returned when there is nothing to sample.
	ErrInvalidRegion = errors.New("invalid region: no coordinates to sample")

	// ErrOutOfBounds is returned when a coordinate lies outside the pixel buffer.
	// Usually a scale mismatch between landmarks and buffer dimensions.
	ErrOutOfBounds = errors.New("coordinate out of bounds")
)

// bytesPerPixel is the RGBA stride of one pixel.
const bytesPerPixel = 4

// SampleMeanColor returns the mean color of the given pixel coordinates.
// pixels is a row-major RGBA buffer (4 bytes per pixel) of the given width;
// the height is derived from the buffer length. Coordinates are not clamped.
func SampleMeanColor(pixels []byte, width int, coords []image.Point) (Color, error) {
	if len(coords) == 0 {
		return Color{}, ErrInvalidRegion
	}
	if width <= 0 {
		return Color{}, fmt.Errorf("%w: buffer width %d", ErrOutOfBounds, width)
	}
	height := len(pixels) / (bytesPerPixel * width)
	return meanColor(pixels, width*bytesPerPixel, image.Rect(0, 0, width, height), coords)
}

// SampleImage is SampleMeanColor over an *image.RGBA, honoring its stride and bounds.
func SampleImage(img *image.RGBA, coords []image.Point) (Color, error) {
	if len(coords) == 0 {
		return Color{}, ErrInvalidRegion
	}
	if img == nil {
		return Color{}, fmt.Errorf("%w: nil image", ErrOutOfBounds)
	}
	return meanColor(img.Pix, img.Stride, img.Rect, coords)
}

func meanColor(pix []byte, stride int, bounds image.Rectangle, coords []image.Point) (Color, error) {
	var rSum, gSum, bSum uint64
	for _, p := range coords {
		if !p.In(bounds) {
			return Color{}, fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrOutOfBounds, p.X, p.Y, bounds.Dx(), bounds.Dy())
		}
		i := (p.Y-bounds.Min.Y)*stride + (p.X-bounds.Min.X)*bytesPerPixel
		rSum += uint64(pix[i])
		gSum += uint64(pix[i+1])
		bSum += uint64(pix[i+2])
	}

	n := float64(len(coords))
	return Color{
		R: channelMean(rSum, n),
		G: channelMean(gSum, n),
		B: channelMean(bSum, n),
	}, nil
}

func channelMean(sum uint64, n float64) uint8 {
	v := math.Round(float64(sum) / n)
	return uint8(min(max(v, 0), 255))
}

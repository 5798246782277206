// Package imaging decodes uploaded frames into RGBA buffers for color sampling.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/kozaktomas/makeup-coach/internal/constants"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrEmptyImage        = errors.New("empty image")
	// ErrTooManyPixels is returned when the header declares more than constants.MaxImagePixels.
	ErrTooManyPixels = errors.New("image has too many pixels")
)

// SupportedFormats lists the format names returned by image.DecodeConfig that we accept.
var SupportedFormats = []string{"jpeg", "png", "gif", "bmp", "tiff", "webp"}

// Frame is a decoded image ready for sampling.
type Frame struct {
	Image  *image.RGBA
	Format string
	// OriginalWidth and OriginalHeight are the dimensions before any downscaling.
	OriginalWidth  int
	OriginalHeight int
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int { return f.Image.Rect.Dx() }

// Height returns the frame height in pixels.
func (f *Frame) Height() int { return f.Image.Rect.Dy() }

// Pixels returns the tightly packed RGBA buffer, 4 bytes per pixel, row-major.
func (f *Frame) Pixels() []byte { return f.Image.Pix }

func isSupported(format string) bool {
	for _, f := range SupportedFormats {
		if f == format {
			return true
		}
	}
	return false
}

// DetectFormat inspects the image header and returns its format name.
func DetectFormat(data []byte) (string, error) {
	_, format, err := decodeConfig(data)
	return format, err
}

func decodeConfig(data []byte) (image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return cfg, "", fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	if !isSupported(format) {
		return cfg, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return cfg, format, nil
}

// checkPixels rejects declared dimensions that would allocate too much on decode.
func checkPixels(cfg image.Config) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ErrEmptyImage
	}
	if cfg.Width > constants.MaxImagePixels/cfg.Height {
		return fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}
	return nil
}

// Decode decodes image bytes into an RGBA frame. When maxSize > 0 and the image is
// larger, it is downscaled to fit keeping the aspect ratio. Normalized landmarks stay
// valid because they are relative to the image dimensions.
func Decode(data []byte, maxSize int) (*Frame, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	cfg, _, err := decodeConfig(data)
	if err != nil {
		return nil, err
	}
	if err := checkPixels(cfg); err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, ErrEmptyImage
	}

	frame := &Frame{
		Format:         format,
		OriginalWidth:  bounds.Dx(),
		OriginalHeight: bounds.Dy(),
	}
	if maxSize > 0 {
		frame.Image = ResizeToFit(img, maxSize)
	} else {
		frame.Image = ToRGBA(img)
	}
	return frame, nil
}

// DecodeFile reads and decodes an image from disk.
func DecodeFile(path string, maxSize int) (*Frame, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied input path
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return Decode(data, maxSize)
}

// ToRGBA converts an image to a zero-origin RGBA image with a tight stride.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// ResizeToFit scales an image to fit within maxSize while keeping aspect ratio.
// Images already within bounds are only converted to RGBA.
func ResizeToFit(img image.Image, maxSize int) *image.RGBA {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= maxSize && height <= maxSize {
		return ToRGBA(img)
	}

	var newWidth, newHeight int
	if width > height {
		newWidth = maxSize
		newHeight = max(1, int(float64(height)*float64(maxSize)/float64(width)))
	} else {
		newHeight = maxSize
		newWidth = max(1, int(float64(width)*float64(maxSize)/float64(height)))
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.BiLinear.Scale(resized, resized.Bounds(), img, bounds, draw.Src, nil)
	return resized
}

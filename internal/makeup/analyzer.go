// Package makeup runs makeup analysis on a single frame: it maps facial regions,
// samples their colors and recommends matching products per region.
package makeup

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/kozaktomas/makeup-coach/internal/catalog"
	"github.com/kozaktomas/makeup-coach/internal/constants"
	"github.com/kozaktomas/makeup-coach/internal/facemesh"
	"github.com/kozaktomas/makeup-coach/internal/palette"
)

// Options tune an Analyzer. Zero values fall back to package defaults.
type Options struct {
	TopN              int
	DefaultConfidence float64
	LandmarkCount     int
}

// RegionSample is the analysis of one facial region.
type RegionSample struct {
	Name      string            `json:"name"`
	Category  string            `json:"category"`
	Landmarks []int             `json:"landmarks"`
	Points    []image.Point     `json:"points"`
	Colors    []string          `json:"colors"`
	Products  []catalog.Product `json:"products"`
}

// Result is the analysis of one frame.
type Result struct {
	Regions     map[string]RegionSample `json:"regions"`
	RegionOrder []string                `json:"region_order"`
	// Products concatenates per-region recommendations in region order.
	// The same product may appear more than once.
	Products   []catalog.Product `json:"products"`
	Confidence float64           `json:"confidence"`
}

// Analyzer is safe for concurrent use; it holds only read-only configuration.
type Analyzer struct {
	regions  []facemesh.Region
	products []catalog.Product
	opts     Options
}

// NewAnalyzer validates the region configuration against the landmark topology
// and snapshots the catalog.
func NewAnalyzer(regions []facemesh.Region, products []catalog.Product, opts Options) (*Analyzer, error) {
	if opts.TopN <= 0 {
		opts.TopN = constants.DefaultTopN
	}
	if opts.DefaultConfidence <= 0 || opts.DefaultConfidence > 1 {
		opts.DefaultConfidence = constants.DefaultConfidence
	}
	if opts.LandmarkCount <= 0 {
		opts.LandmarkCount = constants.FaceMeshLandmarkCount
	}

	if err := facemesh.ValidateRegions(regions, opts.LandmarkCount); err != nil {
		return nil, fmt.Errorf("validating regions: %w", err)
	}

	r := make([]facemesh.Region, len(regions))
	copy(r, regions)
	p := make([]catalog.Product, len(products))
	copy(p, products)

	return &Analyzer{regions: r, products: p, opts: opts}, nil
}

// Regions returns the configured regions in analysis order.
func (a *Analyzer) Regions() []facemesh.Region {
	r := make([]facemesh.Region, len(a.regions))
	copy(r, a.regions)
	return r
}

// Products returns the catalog snapshot.
func (a *Analyzer) Products() []catalog.Product {
	p := make([]catalog.Product, len(a.products))
	copy(p, a.products)
	return p
}

// Options returns the effective options after defaults were applied.
func (a *Analyzer) Options() Options {
	return a.opts
}

// Analyze runs the full pipeline on an RGBA buffer (4 bytes per pixel, row-major).
// Any region failing aborts the whole analysis; no partial result is returned.
func (a *Analyzer) Analyze(pixels []byte, width, height int, face facemesh.Face) (*Result, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return nil, fmt.Errorf("%w: buffer of %d bytes does not match %dx%d RGBA",
			palette.ErrOutOfBounds, len(pixels), width, height)
	}

	mapped, err := facemesh.MapRegions(a.regions, face.Landmarks, width, height)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Regions:     make(map[string]RegionSample, len(mapped)),
		RegionOrder: make([]string, 0, len(mapped)),
		Products:    []catalog.Product{},
		Confidence:  a.confidence(face.Confidence),
	}

	for _, m := range mapped {
		color, err := palette.SampleMeanColor(pixels, width, m.Points)
		if err != nil {
			return nil, fmt.Errorf("sampling region %q: %w", m.Region.Name, err)
		}

		category := m.Region.CategoryKey()
		products := catalog.Rank(a.products, color, category, a.opts.TopN)

		result.Regions[m.Region.Name] = RegionSample{
			Name:      m.Region.Name,
			Category:  category,
			Landmarks: m.Region.Indices(),
			Points:    m.Points,
			Colors:    []string{color.Hex()},
			Products:  products,
		}
		result.RegionOrder = append(result.RegionOrder, m.Region.Name)
		result.Products = append(result.Products, products...)
	}

	return result, nil
}

// AnalyzeImage analyzes an RGBA image. Sub-images are copied into a packed buffer first.
func (a *Analyzer) AnalyzeImage(img *image.RGBA, face facemesh.Face) (*Result, error) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	pix := img.Pix
	if img.Stride != 4*w || len(pix) != 4*w*h {
		pix = make([]byte, 0, 4*w*h)
		for y := range h {
			start := y * img.Stride
			pix = append(pix, img.Pix[start:start+4*w]...)
		}
	}
	return a.Analyze(pix, w, h, face)
}

func (a *Analyzer) confidence(detected *float64) float64 {
	if detected == nil || math.IsNaN(*detected) {
		return a.opts.DefaultConfidence
	}
	return math.Max(0, math.Min(1, *detected))
}

// IsSkippable reports whether err means the frame should be skipped rather than failed.
func IsSkippable(err error) bool {
	return errors.Is(err, facemesh.ErrNoFaceDetected)
}

package facemesh

import (
	_ "embed"
	"fmt"
	"image"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed regions.yaml
var regionsYAML []byte

// Region is a named facial area. Each group is an ordered list of landmark
// indices; a flat region has a single group, a paired one (eyes) has one per side.
type Region struct {
	Name     string  `yaml:"name" json:"name"`
	Category string  `yaml:"category,omitempty" json:"category,omitempty"`
	Groups   [][]int `yaml:"groups" json:"groups"`
}

// CategoryKey returns the product category for this region.
// The region name doubles as the category when none is configured.
func (r Region) CategoryKey() string {
	if r.Category != "" {
		return r.Category
	}
	return r.Name
}

// Indices returns all landmark indices of the region, groups flattened in order.
func (r Region) Indices() []int {
	n := 0
	for _, g := range r.Groups {
		n += len(g)
	}
	indices := make([]int, 0, n)
	for _, g := range r.Groups {
		indices = append(indices, g...)
	}
	return indices
}

// MappedRegion holds the absolute pixel coordinates of one region.
type MappedRegion struct {
	Region Region
	Points []image.Point
}

type regionsFile struct {
	Regions []Region `yaml:"regions"`
}

// ParseRegions decodes a regions YAML document.
func ParseRegions(data []byte) ([]Region, error) {
	var f regionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing regions: %w", err)
	}
	return f.Regions, nil
}

// LoadRegions reads region definitions from a YAML file.
func LoadRegions(path string) ([]Region, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied config path
	if err != nil {
		return nil, fmt.Errorf("reading regions file: %w", err)
	}
	return ParseRegions(data)
}

// DefaultRegions returns the built-in eyes, lips, cheeks and eyebrows regions
// for the 468-point face mesh.
func DefaultRegions() []Region {
	regions, err := ParseRegions(regionsYAML)
	if err != nil {
		// Embedded file, can only fail on a broken build.
		panic("failed to parse embedded regions.yaml: " + err.Error())
	}
	return regions
}

// ValidateRegions checks region definitions against a landmark topology of the given size.
// Run it once at startup so index errors never reach per-frame analysis.
func ValidateRegions(regions []Region, landmarkCount int) error {
	if len(regions) == 0 {
		return fmt.Errorf("%w: no regions configured", ErrInvalidRegionDefinition)
	}
	seen := make(map[string]struct{}, len(regions))
	for _, r := range regions {
		if r.Name == "" {
			return fmt.Errorf("%w: region without a name", ErrInvalidRegionDefinition)
		}
		if _, dup := seen[r.Name]; dup {
			return fmt.Errorf("%w: duplicate region %q", ErrInvalidRegionDefinition, r.Name)
		}
		seen[r.Name] = struct{}{}

		indices := r.Indices()
		if len(indices) == 0 {
			return fmt.Errorf("%w: region %q has no landmarks", ErrInvalidRegionDefinition, r.Name)
		}
		for _, idx := range indices {
			if idx < 0 || idx >= landmarkCount {
				return fmt.Errorf("%w: region %q uses %d, topology has %d landmarks",
					ErrInvalidLandmarkIndex, r.Name, idx, landmarkCount)
			}
		}
	}
	return nil
}

// MapRegions converts every region's landmarks into absolute pixel coordinates:
// each normalized point is scaled by the image dimensions and rounded.
// Results keep the order of regions.
func MapRegions(regions []Region, landmarks []Landmark, width, height int) ([]MappedRegion, error) {
	if len(landmarks) == 0 {
		return nil, ErrNoFaceDetected
	}

	mapped := make([]MappedRegion, 0, len(regions))
	for _, r := range regions {
		indices := r.Indices()
		points := make([]image.Point, 0, len(indices))
		for _, idx := range indices {
			if idx < 0 || idx >= len(landmarks) {
				return nil, fmt.Errorf("%w: region %q uses %d, face has %d landmarks",
					ErrInvalidLandmarkIndex, r.Name, idx, len(landmarks))
			}
			points = append(points, ToPixel(landmarks[idx], width, height))
		}
		mapped = append(mapped, MappedRegion{Region: r, Points: points})
	}
	return mapped, nil
}

// ToPixel scales a normalized landmark to the nearest pixel coordinate.
func ToPixel(l Landmark, width, height int) image.Point {
	return image.Point{
		X: int(math.Round(l.X * float64(width))),
		Y: int(math.Round(l.Y * float64(height))),
	}
}

// Package facemesh maps named facial regions onto detected face-mesh landmarks.
// Landmark detection itself happens outside this package; it only consumes
// normalized landmark coordinates for one face.
package facemesh

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNoFaceDetected means the frame had no face. It is an expected outcome:
	// callers skip the frame rather than retrying.
	ErrNoFaceDetected = errors.New("no face detected")

	// ErrInvalidLandmarkIndex means a region references a landmark the topology does not have.
	// This is a configuration error and should be caught at startup by ValidateRegions.
	ErrInvalidLandmarkIndex = errors.New("invalid landmark index")

	// ErrInvalidRegionDefinition covers region configuration that is malformed in other ways.
	ErrInvalidRegionDefinition = errors.New("invalid region definition")

	// ErrInvalidLandmarks means detector output does not fit the topology or the [0,1] range.
	ErrInvalidLandmarks = errors.New("invalid landmarks")
)

// Landmark is a face-mesh point normalized to [0,1] of the image dimensions.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Face is the detector output for one face in one frame.
// An empty Landmarks slice means no face was found.
type Face struct {
	Landmarks  []Landmark `json:"landmarks"`
	Confidence *float64   `json:"confidence,omitempty"`
}

// ValidateLandmarks checks detector output before analysis: a non-empty face must
// carry at least count points, each within [0,1]. An empty face is valid and
// reported later as ErrNoFaceDetected.
func ValidateLandmarks(landmarks []Landmark, count int) error {
	if len(landmarks) == 0 {
		return nil
	}
	if len(landmarks) < count {
		return fmt.Errorf("%w: got %d points, need %d", ErrInvalidLandmarks, len(landmarks), count)
	}
	for i, l := range landmarks {
		if !inUnitRange(l.X) || !inUnitRange(l.Y) {
			return fmt.Errorf("%w: point %d (%v, %v) outside [0,1]", ErrInvalidLandmarks, i, l.X, l.Y)
		}
	}
	return nil
}

func inUnitRange(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// ClampToFrame returns a copy of landmarks pulled in so every point maps to a
// pixel inside a width x height frame. Points on the far edge (1.0) land on the
// last row or column.
func ClampToFrame(landmarks []Landmark, width, height int) []Landmark {
	if width <= 0 || height <= 0 {
		return landmarks
	}
	maxX := float64(width-1) / float64(width)
	maxY := float64(height-1) / float64(height)

	out := make([]Landmark, len(landmarks))
	for i, l := range landmarks {
		out[i] = Landmark{
			X: math.Max(0, math.Min(l.X, maxX)),
			Y: math.Max(0, math.Min(l.Y, maxY)),
		}
	}
	return out
}

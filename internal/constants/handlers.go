// Package constants provides shared constants used across the codebase.
package constants

// Event channel constants
const (
	// EventChannelBuffer is the buffer size for progression event channels
	EventChannelBuffer = 100
)

// File upload constants
const (
	// MaxUploadSize is the maximum image upload size in bytes (10MB)
	MaxUploadSize = 10 << 20

	// MaxLandmarksFieldSize bounds the landmarks form field
	MaxLandmarksFieldSize = 1 << 20
)

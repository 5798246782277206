// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Analysis constants
const (
	// DefaultTopN is the number of recommended products returned per region
	DefaultTopN = 3

	// DefaultConfidence is reported when the landmark detector gives no per-face confidence
	DefaultConfidence = 0.85

	// FaceMeshLandmarkCount is the size of the MediaPipe face mesh topology (without iris refinement)
	FaceMeshLandmarkCount = 468

	// MaxImageSize is the maximum dimension (width or height) an uploaded image is scaled down to
	// before sampling. Landmarks are normalized, so scaling does not move them.
	MaxImageSize = 1920

	// MaxImagePixels caps the declared width*height of an image before it is decoded
	MaxImagePixels = 40_000_000
)

// Progression constants
const (
	// SkillExperiencePerLevel is the flat experience cost of one skill level
	SkillExperiencePerLevel = 100

	// SkillExperiencePerPractice scales an observed accuracy into skill experience
	SkillExperiencePerPractice = 10

	// DateLayout is the calendar-day layout used for last-activity dates
	DateLayout = "2006-01-02"
)

// Listing constants
const (
	// DefaultAnalysisListLimit is the default number of stored analyses returned per user
	DefaultAnalysisListLimit = 20

	// MaxAnalysisListLimit caps the analyses list endpoint
	MaxAnalysisListLimit = 200
)

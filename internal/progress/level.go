package progress

import "math"

// levelBand is a contiguous experience range granting a fixed number of levels.
type levelBand struct {
	startXP    int
	span       int
	startLevel int
	levels     int
}

// Bands up to 35,000 XP; everything above costs openBandCost per level.
var levelBands = []levelBand{
	{startXP: 0, span: 1000, startLevel: 1, levels: 10},      // 100 XP per level
	{startXP: 1000, span: 4000, startLevel: 11, levels: 15},  // ~267 XP per level
	{startXP: 5000, span: 10000, startLevel: 26, levels: 25}, // 400 XP per level
	{startXP: 15000, span: 20000, startLevel: 51, levels: 25}, // 800 XP per level
}

const (
	openBandStartXP    = 35000
	openBandStartLevel = 76
	openBandCost       = 1000
)

// LevelForExperience maps cumulative experience to a level. It is monotonically
// non-decreasing and starts at level 1; negative experience counts as zero.
func LevelForExperience(xp int) int {
	if xp <= 0 {
		return 1
	}
	if xp >= openBandStartXP {
		return openBandStartLevel + (xp-openBandStartXP)/openBandCost
	}
	for _, b := range levelBands {
		if xp < b.startXP+b.span {
			return b.startLevel + (xp-b.startXP)*b.levels/b.span
		}
	}
	// unreachable: the last band ends at openBandStartXP
	return openBandStartLevel
}

// ExperienceForLevelFloor returns the minimum experience needed to reach level.
// LevelForExperience(ExperienceForLevelFloor(l)) == l for every l >= 1 whose
// floor fits in an int; beyond that it saturates at math.MaxInt.
func ExperienceForLevelFloor(level int) int {
	if level <= 1 {
		return 0
	}
	if level >= openBandStartLevel {
		if level-openBandStartLevel > (math.MaxInt-openBandStartXP)/openBandCost {
			return math.MaxInt
		}
		return openBandStartXP + (level-openBandStartLevel)*openBandCost
	}
	for _, b := range levelBands {
		if level < b.startLevel+b.levels {
			n := (level - b.startLevel) * b.span
			return b.startXP + (n+b.levels-1)/b.levels
		}
	}
	return openBandStartXP
}

// LevelBounds returns the experience floor of the given level and of the next one,
// the range a progress bar fills.
func LevelBounds(level int) (current, next int) {
	return ExperienceForLevelFloor(level), ExperienceForLevelFloor(level + 1)
}

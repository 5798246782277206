package catalog

import (
	"sort"

	"github.com/kozaktomas/makeup-coach/internal/constants"
	"github.com/kozaktomas/makeup-coach/internal/palette"
)

// NoColorScore ranks products without any usable color below every real match.
const NoColorScore = -1.0

// Match is a product with its similarity to the target color.
type Match struct {
	Product    Product `json:"product"`
	Similarity float64 `json:"similarity"`
}

// Score returns the best similarity between target and any of the product's colors.
// Colors that fail to parse are ignored; NoColorScore is returned when none are usable.
func Score(p Product, target palette.Color) float64 {
	best := NoColorScore
	for _, hex := range p.Colors {
		c, err := palette.ParseHex(hex)
		if err != nil {
			continue
		}
		if s := palette.Similarity(target, c); s > best {
			best = s
		}
	}
	return best
}

// RankWithScores returns up to topN products of the category ordered by
// similarity to target, best first. Ties keep catalog order. An empty category
// disables the filter and topN <= 0 falls back to the default.
func RankWithScores(products []Product, target palette.Color, category string, topN int) []Match {
	if topN <= 0 {
		topN = constants.DefaultTopN
	}

	candidates := FilterCategory(products, category)
	matches := make([]Match, len(candidates))
	for i, p := range candidates {
		matches[i] = Match{Product: p, Similarity: Score(p, target)}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches
}

// Rank is RankWithScores without the scores.
func Rank(products []Product, target palette.Color, category string, topN int) []Product {
	matches := RankWithScores(products, target, category, topN)
	result := make([]Product, len(matches))
	for i, m := range matches {
		result[i] = m.Product
	}
	return result
}

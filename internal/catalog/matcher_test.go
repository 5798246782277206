package catalog

import (
	"reflect"
	"testing"

	"github.com/kozaktomas/makeup-coach/internal/palette"
)

func ids(products []Product) []string {
	result := make([]string, len(products))
	for i, p := range products {
		result[i] = p.ID
	}
	return result
}

func TestRankDefaultCatalog(t *testing.T) {
	products := DefaultStatic().All()

	tests := []struct {
		name     string
		target   string
		category string
		topN     int
		want     []string
	}{
		{
			name:     "red lips prefer bold",
			target:   "#FF0000",
			category: "lips",
			topN:     3,
			want:     []string{"lips-2", "lips-3", "lips-1"},
		},
		{
			name:     "white prefers natural glow",
			target:   "#FFFFFF",
			category: "eyes",
			topN:     3,
			want:     []string{"eyes-1", "eyes-3", "eyes-2"},
		},
		{
			name:     "exact palette color wins",
			target:   "#8C7266",
			category: "cheeks",
			topN:     1,
			want:     []string{"cheeks-3"},
		},
		{
			name:     "zero topN falls back to three",
			target:   "#FF0000",
			category: "eyebrows",
			topN:     0,
			want:     []string{"eyebrows-2", "eyebrows-3", "eyebrows-1"},
		},
		{
			name:     "category normalization",
			target:   "#FF0000",
			category: " LIPS ",
			topN:     2,
			want:     []string{"lips-2", "lips-3"},
		},
		{
			name:     "unknown category",
			target:   "#FF0000",
			category: "nails",
			topN:     3,
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rank(products, palette.MustParseHex(tt.target), tt.category, tt.topN)
			if got == nil {
				t.Fatal("Rank() returned nil, want empty slice")
			}
			if !reflect.DeepEqual(ids(got), tt.want) {
				t.Errorf("Rank() = %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestRankIsDeterministicOnTies(t *testing.T) {
	products := []Product{
		{ID: "a", Category: "lips", Colors: []string{"#112233"}},
		{ID: "b", Category: "lips", Colors: []string{"#112233"}},
		{ID: "c", Category: "lips", Colors: []string{"#112233"}},
		{ID: "d", Category: "lips", Colors: []string{"#112233"}},
	}
	target := palette.MustParseHex("#445566")

	first := ids(Rank(products, target, "lips", 3))
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(first, want) {
		t.Fatalf("Rank() = %v, want %v", first, want)
	}
	for range 20 {
		if got := ids(Rank(products, target, "lips", 3)); !reflect.DeepEqual(got, first) {
			t.Fatalf("Rank() not deterministic: %v vs %v", got, first)
		}
	}
}

func TestRankWithScores(t *testing.T) {
	products := []Product{
		{ID: "no-colors", Category: "lips"},
		{ID: "bad-color", Category: "lips", Colors: []string{"red"}},
		{ID: "mixed", Category: "lips", Colors: []string{"oops", "#000000", "#FF0000"}},
	}

	matches := RankWithScores(products, palette.MustParseHex("#FF0000"), "", 5)
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}
	if matches[0].Product.ID != "mixed" || matches[0].Similarity != 1 {
		t.Errorf("first match = %s (%v), want mixed (1)", matches[0].Product.ID, matches[0].Similarity)
	}
	for _, m := range matches[1:] {
		if m.Similarity != NoColorScore {
			t.Errorf("%s similarity = %v, want %v", m.Product.ID, m.Similarity, NoColorScore)
		}
	}
	if matches[1].Product.ID != "no-colors" || matches[2].Product.ID != "bad-color" {
		t.Errorf("colorless products reordered: %s, %s", matches[1].Product.ID, matches[2].Product.ID)
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	products := DefaultStatic().All()
	before := ids(products)
	Rank(products, palette.MustParseHex("#FF0000"), "lips", 3)
	if !reflect.DeepEqual(ids(products), before) {
		t.Error("Rank() reordered the input slice")
	}
}

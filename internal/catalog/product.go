// Package catalog holds makeup products and ranks them by color similarity.
package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// ErrInvalidCatalog is returned when catalog data cannot be parsed or is inconsistent.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Product is a purchasable makeup item.
type Product struct {
	ID       string   `json:"id" yaml:"id" db:"id"`
	Name     string   `json:"name" yaml:"name" db:"name"`
	Brand    string   `json:"brand" yaml:"brand" db:"brand"`
	Category string   `json:"category" yaml:"category" db:"category"`
	Price    float64  `json:"price" yaml:"price" db:"price"`
	ImageURL string   `json:"image_url" yaml:"image_url" db:"image_url"`
	Colors   []string `json:"colors,omitempty" yaml:"colors,omitempty" db:"-"`
	Rating   *float64 `json:"rating,omitempty" yaml:"rating,omitempty" db:"rating"`
	URL      string   `json:"url,omitempty" yaml:"url,omitempty" db:"url"`
}

// Source provides products for a category. An empty category means all products.
type Source interface {
	Products(ctx context.Context, category string) ([]Product, error)
}

// Static is an in-memory catalog loaded once.
type Static struct {
	products []Product
}

type catalogFile struct {
	Products []Product `yaml:"products"`
}

// NewStatic creates a catalog over the given products. The slice is copied.
func NewStatic(products []Product) *Static {
	cp := make([]Product, len(products))
	copy(cp, products)
	return &Static{products: cp}
}

// ParseCatalog decodes a catalog YAML document and checks product ids are unique.
func ParseCatalog(data []byte) ([]Product, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	seen := make(map[string]struct{}, len(f.Products))
	for _, p := range f.Products {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: product %q has no id", ErrInvalidCatalog, p.Name)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate product id %q", ErrInvalidCatalog, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return f.Products, nil
}

// LoadStatic reads a catalog from a YAML file.
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied config path
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	products, err := ParseCatalog(data)
	if err != nil {
		return nil, err
	}
	return &Static{products: products}, nil
}

// DefaultStatic returns the built-in catalog.
func DefaultStatic() *Static {
	products, err := ParseCatalog(catalogYAML)
	if err != nil {
		panic("failed to parse embedded catalog.yaml: " + err.Error())
	}
	return &Static{products: products}
}

// All returns a copy of every product in catalog order.
func (s *Static) All() []Product {
	cp := make([]Product, len(s.products))
	copy(cp, s.products)
	return cp
}

// Products implements Source.
func (s *Static) Products(_ context.Context, category string) ([]Product, error) {
	return FilterCategory(s.products, category), nil
}

// FilterCategory returns the products in the category, keeping catalog order.
// An empty category returns a copy of all products.
func FilterCategory(products []Product, category string) []Product {
	key := NormalizeCategory(category)
	result := make([]Product, 0, len(products))
	for _, p := range products {
		if key == "" || NormalizeCategory(p.Category) == key {
			result = append(result, p)
		}
	}
	return result
}

// Categories lists the distinct product categories in first-seen order.
func Categories(products []Product) []string {
	seen := make(map[string]struct{})
	var categories []string
	for _, p := range products {
		key := NormalizeCategory(p.Category)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories
}

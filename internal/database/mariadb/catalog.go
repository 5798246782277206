package mariadb

import (
	"context"
	"fmt"

	"github.com/kozaktomas/makeup-coach/internal/catalog"
	"github.com/kozaktomas/makeup-coach/internal/database"
)

const productsQuery = `
	SELECT id, name, brand, category, price,
		COALESCE(image_url, '') AS image_url,
		rating,
		COALESCE(url, '') AS url
	FROM products
	ORDER BY position, id`

const colorsQuery = `
	SELECT product_id, hex
	FROM product_colors
	ORDER BY product_id, position`

type productColor struct {
	ProductID string `db:"product_id"`
	Hex       string `db:"hex"`
}

// CatalogRepository serves products stored in the `products` and `product_colors` tables.
// Category matching uses catalog.NormalizeCategory, so it happens after the rows are read.
type CatalogRepository struct {
	pool *Pool
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(pool *Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// Products returns the products of a category with their swatch colors, in catalog order.
func (r *CatalogRepository) Products(ctx context.Context, category string) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := r.pool.db.SelectContext(ctx, &products, productsQuery); err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	products = catalog.FilterCategory(products, category)
	if len(products) == 0 {
		return products, nil
	}

	var colors []productColor
	if err := r.pool.db.SelectContext(ctx, &colors, colorsQuery); err != nil {
		return nil, fmt.Errorf("query product colors: %w", err)
	}

	byProduct := make(map[string][]string)
	for _, c := range colors {
		byProduct[c.ProductID] = append(byProduct[c.ProductID], c.Hex)
	}
	for i := range products {
		products[i].Colors = byProduct[products[i].ID]
	}
	return products, nil
}

// Count returns the number of products
func (r *CatalogRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM products"); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

var _ database.CatalogReader = (*CatalogRepository)(nil)

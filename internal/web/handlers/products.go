package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kozaktomas/makeup-coach/internal/catalog"
	"github.com/kozaktomas/makeup-coach/internal/palette"
)

// maxProductsLimit caps the number of products a single request returns.
const maxProductsLimit = 500

// ProductsHandler serves the product catalog.
type ProductsHandler struct {
	catalog catalog.Source
	topN    int
	log     *zap.Logger
}

// NewProductsHandler creates a new products handler. topN is the default
// number of matches returned when a color is given.
func NewProductsHandler(source catalog.Source, topN int, log *zap.Logger) *ProductsHandler {
	return &ProductsHandler{catalog: source, topN: topN, log: log}
}

// ProductsResponse lists catalog products.
type ProductsResponse struct {
	Products []catalog.Product `json:"products"`
	Count    int               `json:"count"`
}

// MatchesResponse lists products ranked by color similarity.
type MatchesResponse struct {
	Color   string          `json:"color"`
	Matches []catalog.Match `json:"matches"`
}

// List returns the catalog, optionally filtered by category. When a color is
// given the products are ranked by similarity to it instead.
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	category := query.Get("category")
	colorParam := strings.TrimSpace(query.Get("color"))

	defaultLimit := maxProductsLimit
	if colorParam != "" {
		defaultLimit = h.topN
	}
	limit, err := parseLimit(r, defaultLimit, maxProductsLimit)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var target palette.Color
	if colorParam != "" {
		if target, err = palette.ParseHex(colorParam); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	products, err := h.catalog.Products(r.Context(), category)
	if err != nil {
		h.log.Error("failed to load products", zap.String("category", sanitizeForLog(category)), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load products")
		return
	}

	if colorParam == "" {
		if len(products) > limit {
			products = products[:limit]
		}
		respondJSON(w, http.StatusOK, ProductsResponse{Products: products, Count: len(products)})
		return
	}

	// Products are already filtered by the source, so rank without a category.
	respondJSON(w, http.StatusOK, MatchesResponse{
		Color:   target.Hex(),
		Matches: catalog.RankWithScores(products, target, "", limit),
	})
}

package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/makeup-coach/internal/catalog"
	"github.com/kozaktomas/makeup-coach/internal/database/mock"
)

func TestProductsHandler_List(t *testing.T) {
	handler := NewProductsHandler(catalog.DefaultStatic(), 3, testLogger())

	tests := []struct {
		name      string
		query     string
		wantCount int
	}{
		{"all products", "", 12},
		{"by category", "?category=lips", 3},
		{"category is normalized", "?category=%20LIPS%20", 3},
		{"limit", "?limit=5", 5},
		{"unknown category", "?category=nails", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			handler.List(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/products"+tt.query, nil))

			assertStatusCode(t, recorder, http.StatusOK)
			var resp ProductsResponse
			parseJSONResponse(t, recorder, &resp)
			if resp.Count != tt.wantCount || len(resp.Products) != tt.wantCount {
				t.Errorf("expected %d products, got count=%d len=%d", tt.wantCount, resp.Count, len(resp.Products))
			}
		})
	}
}

func TestProductsHandler_ListByColor(t *testing.T) {
	handler := NewProductsHandler(catalog.DefaultStatic(), 2, testLogger())

	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/products?category=lips&color=ff0000", nil))

	assertStatusCode(t, recorder, http.StatusOK)
	var resp MatchesResponse
	parseJSONResponse(t, recorder, &resp)

	if resp.Color != "#FF0000" {
		t.Errorf("color = %q, want #FF0000", resp.Color)
	}
	if len(resp.Matches) != 2 {
		t.Fatalf("expected default top 2 matches, got %d", len(resp.Matches))
	}
	if resp.Matches[0].Product.ID != "lips-2" {
		t.Errorf("best match = %s, want lips-2", resp.Matches[0].Product.ID)
	}
	if resp.Matches[0].Similarity < resp.Matches[1].Similarity {
		t.Error("matches are not ordered by similarity")
	}
}

func TestProductsHandler_ListErrors(t *testing.T) {
	failing := mock.NewMockCatalogRepository(nil)
	failing.ProductsError = errors.New("timeout")

	tests := []struct {
		name       string
		source     catalog.Source
		query      string
		wantStatus int
		wantError  string
	}{
		{"invalid color", catalog.DefaultStatic(), "?color=red", http.StatusBadRequest, ""},
		{"invalid limit", catalog.DefaultStatic(), "?limit=-3", http.StatusBadRequest, `invalid limit "-3"`},
		{"source failure", failing, "", http.StatusInternalServerError, "failed to load products"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewProductsHandler(tt.source, 3, testLogger())
			recorder := httptest.NewRecorder()
			handler.List(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/products"+tt.query, nil))

			assertStatusCode(t, recorder, tt.wantStatus)
			if tt.wantError != "" {
				assertJSONError(t, recorder, tt.wantError)
			}
		})
	}
}

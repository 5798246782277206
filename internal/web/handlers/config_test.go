package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/kozaktomas/makeup-coach/internal/catalog"
	"github.com/kozaktomas/makeup-coach/internal/database/mock"
	"github.com/kozaktomas/makeup-coach/internal/facemesh"
)

func TestConfigHandler_Get(t *testing.T) {
	cfg := testConfig()
	handler := NewConfigHandler(cfg, testAnalyzer(t), catalog.DefaultStatic(), true, testLogger())

	recorder := httptest.NewRecorder()
	handler.Get(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/config", nil))

	assertStatusCode(t, recorder, http.StatusOK)

	var resp ConfigResponse
	parseJSONResponse(t, recorder, &resp)

	wantRegions := []string{"eyes", "lips", "cheeks", "eyebrows"}
	if !reflect.DeepEqual(resp.Regions, wantRegions) {
		t.Errorf("regions = %v, want %v", resp.Regions, wantRegions)
	}
	wantCategories := []string{"lips", "eyes", "cheeks", "eyebrows"}
	if !reflect.DeepEqual(resp.Categories, wantCategories) {
		t.Errorf("categories = %v, want %v", resp.Categories, wantCategories)
	}
	if resp.TopN != 3 || resp.DefaultConfidence != 0.85 || resp.LandmarkCount != 468 {
		t.Errorf("unexpected analysis settings: %+v", resp)
	}
	if resp.Stores.Progress != "memory" || resp.Stores.Catalog != "embedded" || !resp.Stores.Analyses {
		t.Errorf("unexpected stores: %+v", resp.Stores)
	}
}

func TestConfigHandler_GetCatalogError(t *testing.T) {
	source := mock.NewMockCatalogRepository(nil)
	source.ProductsError = errors.New("connection refused")
	handler := NewConfigHandler(testConfig(), testAnalyzer(t), source, false, testLogger())

	recorder := httptest.NewRecorder()
	handler.Get(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/config", nil))

	assertStatusCode(t, recorder, http.StatusInternalServerError)
	assertJSONError(t, recorder, "failed to load catalog")
}

func TestConfigHandler_Regions(t *testing.T) {
	handler := NewConfigHandler(testConfig(), testAnalyzer(t), catalog.DefaultStatic(), false, testLogger())

	recorder := httptest.NewRecorder()
	handler.Regions(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/regions", nil))

	assertStatusCode(t, recorder, http.StatusOK)

	var regions []facemesh.Region
	parseJSONResponse(t, recorder, &regions)
	if len(regions) != 4 {
		t.Fatalf("expected 4 regions, got %d", len(regions))
	}
	if regions[0].Name != "eyes" || len(regions[0].Groups) != 2 {
		t.Errorf("unexpected first region: %+v", regions[0])
	}
}

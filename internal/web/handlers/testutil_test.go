package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kozaktomas/makeup-coach/internal/catalog"
	"github.com/kozaktomas/makeup-coach/internal/config"
	"github.com/kozaktomas/makeup-coach/internal/constants"
	"github.com/kozaktomas/makeup-coach/internal/database/mock"
	"github.com/kozaktomas/makeup-coach/internal/facemesh"
	"github.com/kozaktomas/makeup-coach/internal/makeup"
	"github.com/kozaktomas/makeup-coach/internal/progress"
)

// testConfig creates a minimal config for testing
func testConfig() *config.Config {
	return &config.Config{
		Progress: config.ProgressConfig{Store: config.ProgressStoreMemory},
		Catalog:  config.CatalogConfig{Source: config.CatalogSourceEmbedded},
		Analysis: config.AnalysisConfig{MaxImageSize: constants.MaxImageSize},
	}
}

// testAnalyzer builds an analyzer over the built-in regions and catalog
func testAnalyzer(t *testing.T) *makeup.Analyzer {
	t.Helper()
	a, err := makeup.NewAnalyzer(facemesh.DefaultRegions(), catalog.DefaultStatic().All(), makeup.Options{})
	if err != nil {
		t.Fatalf("failed to create analyzer: %v", err)
	}
	return a
}

// testTracker creates a tracker over an in-memory mock with a fixed clock
func testTracker(t *testing.T) (*progress.Tracker, *mock.MockProgressRepository) {
	t.Helper()
	repo := mock.NewMockProgressRepository()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	return progress.NewTracker(repo, progress.TrackerOptions{Now: func() time.Time { return now }}), repo
}

// solidPNG encodes a w x h single-color PNG
func solidPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// centeredLandmarks places every mesh point at the same normalized position
func centeredLandmarks(t *testing.T) string {
	t.Helper()
	return landmarksAt(t, constants.FaceMeshLandmarkCount, 0.25, 0.25)
}

// landmarksAt returns n points at (x, y) as the JSON form field
func landmarksAt(t *testing.T, n int, x, y float64) string {
	t.Helper()
	landmarks := make([]facemesh.Landmark, n)
	for i := range landmarks {
		landmarks[i] = facemesh.Landmark{X: x, Y: y}
	}
	data, err := json.Marshal(landmarks)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// multipartRequest builds a multipart POST with an optional image part and form fields
func multipartRequest(t *testing.T, path string, image []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if image != nil {
		fw, err := mw.CreateFormFile("image", "frame.png")
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(image)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// jsonRequest creates a request with a JSON body
func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// testLogger returns a logger that discards everything
func testLogger() *zap.Logger {
	return zap.NewNop()
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}

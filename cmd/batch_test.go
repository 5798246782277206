package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestLoadFace(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name           string
		content        string
		wantErr        bool
		wantLandmarks  int
		wantConfidence *float64
	}{
		{name: "array form", content: `[{"x":0.1,"y":0.2},{"x":0.3,"y":0.4}]`, wantLandmarks: 2},
		{name: "object form", content: ` {"landmarks":[{"x":0.5,"y":0.5}],"confidence":0.8}`, wantLandmarks: 1, wantConfidence: ptr(0.8)},
		{name: "empty array", content: `[]`, wantLandmarks: 0},
		{name: "invalid json", content: `{"landmarks":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			writeFile(t, path, tt.content)

			face, err := loadFace(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(face.Landmarks) != tt.wantLandmarks {
				t.Errorf("expected %d landmarks, got %d", tt.wantLandmarks, len(face.Landmarks))
			}
			if tt.wantConfidence == nil && face.Confidence != nil {
				t.Errorf("expected no confidence, got %v", *face.Confidence)
			}
			if tt.wantConfidence != nil && (face.Confidence == nil || *face.Confidence != *tt.wantConfidence) {
				t.Errorf("expected confidence %v, got %v", *tt.wantConfidence, face.Confidence)
			}
		})
	}
}

func TestLoadFaceMissingFile(t *testing.T) {
	if _, err := loadFace(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFindBatchItems(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.png"), "png")
	writeFile(t, filepath.Join(dir, "b.landmarks.json"), "[]")
	writeFile(t, filepath.Join(dir, "a.jpg"), "jpg")
	writeFile(t, filepath.Join(dir, "a.landmarks.json"), "[]")
	writeFile(t, filepath.Join(dir, "lonely.jpg"), "jpg")
	writeFile(t, filepath.Join(dir, "notes.json"), "{}")
	if err := os.Mkdir(filepath.Join(dir, "sub.jpg"), 0o700); err != nil {
		t.Fatal(err)
	}

	items, err := findBatchItems(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []batchItem{
		{Image: filepath.Join(dir, "a.jpg"), Landmarks: filepath.Join(dir, "a.landmarks.json")},
		{Image: filepath.Join(dir, "b.png"), Landmarks: filepath.Join(dir, "b.landmarks.json")},
	}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d: %+v", len(want), len(items), items)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("item %d: expected %+v, got %+v", i, want[i], items[i])
		}
	}
}

func TestFindBatchItemsMissingDir(t *testing.T) {
	if _, err := findBatchItems(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestAnalyzeItemRecordsErrors(t *testing.T) {
	dir := t.TempDir()
	item := batchItem{Image: filepath.Join(dir, "x.png"), Landmarks: filepath.Join(dir, "x.landmarks.json")}

	res := analyzeItem(nil, 0, item)
	if res.Error == "" {
		t.Fatal("expected error for missing landmarks file")
	}
	if res.Result != nil {
		t.Error("expected no result")
	}
}

func ptr(f float64) *float64 { return &f }

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/makeup-coach/internal/facemesh"
	"github.com/kozaktomas/makeup-coach/internal/imaging"
	"github.com/kozaktomas/makeup-coach/internal/makeup"
)

const landmarksSuffix = ".landmarks.json"

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Analyze every image in a directory",
	Long: `Analyze every image in a directory that has a matching landmarks file.

An image name.ext is analyzed when name.landmarks.json exists next to it.

Examples:
  makeup-coach batch ./frames
  makeup-coach batch ./frames --output results.json --concurrency 8`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().String("output", "", "Write results as JSON to this file")
	batchCmd.Flags().Int("concurrency", 4, "Number of images analyzed in parallel")
}

// batchItem is one image with its landmarks file.
type batchItem struct {
	Image     string `json:"image"`
	Landmarks string `json:"landmarks"`
}

// BatchResult is the outcome for one image.
type BatchResult struct {
	Image   string         `json:"image"`
	Result  *makeup.Result `json:"result,omitempty"`
	Skipped string         `json:"skipped,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// findBatchItems pairs images with landmarks files, sorted by image path.
func findBatchItems(dir string) ([]batchItem, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	var items []batchItem
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasSuffix(name, landmarksSuffix) {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext == "" || ext == ".json" {
			continue
		}
		landmarks := filepath.Join(dir, strings.TrimSuffix(name, filepath.Ext(name))+landmarksSuffix)
		if _, err := os.Stat(landmarks); err != nil {
			continue
		}
		items = append(items, batchItem{Image: filepath.Join(dir, name), Landmarks: landmarks})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Image < items[j].Image })
	return items, nil
}

// analyzeItem never fails; problems are recorded on the result.
func analyzeItem(analyzer *makeup.Analyzer, maxImageSize int, item batchItem) BatchResult {
	res := BatchResult{Image: item.Image}

	face, err := loadFace(item.Landmarks)
	if err == nil {
		err = facemesh.ValidateLandmarks(face.Landmarks, analyzer.Options().LandmarkCount)
	}
	if err != nil {
		res.Error = err.Error()
		return res
	}
	frame, err := imaging.DecodeFile(item.Image, maxImageSize)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedFormat) {
			res.Skipped = err.Error()
		} else {
			res.Error = err.Error()
		}
		return res
	}
	face.Landmarks = facemesh.ClampToFrame(face.Landmarks, frame.Width(), frame.Height())

	result, err := analyzer.AnalyzeImage(frame.Image, face)
	switch {
	case err == nil:
		res.Result = result
	case makeup.IsSkippable(err):
		res.Skipped = err.Error()
	default:
		res.Error = err.Error()
	}
	return res
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	dir := args[0]
	outputPath := mustGetString(cmd, "output")
	concurrency := mustGetInt(cmd, "concurrency")
	if concurrency < 1 {
		concurrency = 1
	}

	items, err := findBatchItems(dir)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("No images with landmarks found")
		return nil
	}

	analyzer, cfg, cleanup, err := newCLIAnalyzer(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Printf("Found %d images with landmarks\n", len(items))

	bar := progressbar.NewOptions(len(items),
		progressbar.OptionSetDescription("Analyzing"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	results := make([]BatchResult, len(items))
	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	for i, item := range items {
		wg.Add(1)
		go func(i int, item batchItem) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = analyzeItem(analyzer, cfg.Analysis.MaxImageSize, item)
			_ = bar.Add(1)
		}(i, item)
	}
	wg.Wait()
	fmt.Println()

	var analyzed, skipped, failed int
	for _, r := range results {
		switch {
		case r.Error != "":
			failed++
			fmt.Printf("  ✗ %s: %s\n", r.Image, r.Error)
		case r.Skipped != "":
			skipped++
		default:
			analyzed++
		}
	}
	fmt.Printf("\nAnalyzed: %d, skipped: %d, failed: %d\n", analyzed, skipped, failed)

	if outputPath != "" {
		f, err := os.Create(outputPath) //nolint:gosec // user-supplied output path
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("writing results: %w", err)
		}
		fmt.Printf("Results written to %s\n", outputPath)
	}
	return nil
}

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/makeup-coach/internal/config"
	"github.com/kozaktomas/makeup-coach/internal/facemesh"
	"github.com/kozaktomas/makeup-coach/internal/imaging"
	"github.com/kozaktomas/makeup-coach/internal/makeup"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <image>",
	Short: "Analyze one image with its face-mesh landmarks",
	Long: `Sample the colors of every facial region in an image and recommend products.

The landmarks file holds either a JSON array of {"x","y"} points normalized
to [0,1], or an object {"landmarks": [...], "confidence": 0.9}.

Examples:
  makeup-coach analyze face.jpg --landmarks face.landmarks.json
  makeup-coach analyze face.jpg --landmarks face.landmarks.json --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().String("landmarks", "", "Path to the landmarks JSON file (required)")
	analyzeCmd.Flags().Float64("confidence", -1, "Detection confidence in [0,1] (overrides the file)")
	analyzeCmd.Flags().Bool("json", false, "Output as JSON")
	_ = analyzeCmd.MarkFlagRequired("landmarks")
}

// loadFace reads a landmarks file in either the array or the object form.
func loadFace(path string) (facemesh.Face, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied input path
	if err != nil {
		return facemesh.Face{}, fmt.Errorf("reading landmarks: %w", err)
	}

	var face facemesh.Face
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		err = json.Unmarshal(trimmed, &face)
	} else {
		err = json.Unmarshal(trimmed, &face.Landmarks)
	}
	if err != nil {
		return facemesh.Face{}, fmt.Errorf("parsing landmarks %s: %w", path, err)
	}
	return face, nil
}

// newCLIAnalyzer builds an analyzer from configuration without touching the stores.
func newCLIAnalyzer(ctx context.Context) (*makeup.Analyzer, *config.Config, func(), error) {
	cfg := config.Load()
	var cl cleanups
	source, err := openCatalog(cfg, &cl)
	if err != nil {
		return nil, nil, nil, err
	}
	analyzer, err := buildAnalyzer(ctx, cfg, source)
	if err != nil {
		cl.run()
		return nil, nil, nil, err
	}
	return analyzer, cfg, cl.run, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	imagePath := args[0]
	landmarksPath := mustGetString(cmd, "landmarks")
	confidence := mustGetFloat64(cmd, "confidence")
	jsonOutput := mustGetBool(cmd, "json")

	analyzer, cfg, cleanup, err := newCLIAnalyzer(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	face, err := loadFace(landmarksPath)
	if err != nil {
		return err
	}
	if confidence >= 0 {
		if confidence > 1 {
			return errors.New("--confidence must be within [0,1]")
		}
		face.Confidence = &confidence
	}

	if err := facemesh.ValidateLandmarks(face.Landmarks, analyzer.Options().LandmarkCount); err != nil {
		return err
	}

	frame, err := imaging.DecodeFile(imagePath, cfg.Analysis.MaxImageSize)
	if err != nil {
		return err
	}
	face.Landmarks = facemesh.ClampToFrame(face.Landmarks, frame.Width(), frame.Height())

	result, err := analyzer.AnalyzeImage(frame.Image, face)
	if err != nil {
		if makeup.IsSkippable(err) {
			fmt.Printf("Nothing to analyze: %v\n", err)
			return nil
		}
		return fmt.Errorf("analysis failed: %w", err)
	}

	if jsonOutput {
		return printJSON(result)
	}
	printResult(imagePath, frame, result)
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(path string, frame *imaging.Frame, result *makeup.Result) {
	fmt.Printf("Image: %s (%s, %dx%d)\n", path, frame.Format, frame.OriginalWidth, frame.OriginalHeight)
	fmt.Printf("Confidence: %.2f\n\n", result.Confidence)

	for _, name := range result.RegionOrder {
		sample := result.Regions[name]
		fmt.Printf("%s [%s]: %s\n", sample.Name, sample.Category, strings.Join(sample.Colors, ", "))
		if len(sample.Products) == 0 {
			fmt.Println("  no matching products")
			continue
		}
		for i, p := range sample.Products {
			fmt.Printf("  %d. %s %s (%.2f)\n", i+1, p.Brand, p.Name, p.Price)
		}
	}
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/makeup-coach/internal/catalog"
	"github.com/kozaktomas/makeup-coach/internal/config"
	"github.com/kozaktomas/makeup-coach/internal/constants"
	"github.com/kozaktomas/makeup-coach/internal/palette"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse the product catalog",
	Long:  `List products from the configured catalog or rank them against a color.`,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	RunE:  runCatalogList,
}

var catalogMatchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank products by similarity to a color",
	Long: `Rank products by similarity to a color.

Examples:
  makeup-coach catalog match --color "#b5654d"
  makeup-coach catalog match --color "#b5654d" --category lipstick --limit 5`,
	RunE: runCatalogMatch,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogMatchCmd)

	catalogListCmd.Flags().String("category", "", "Only list products of this category")

	catalogMatchCmd.Flags().String("color", "", "Target color as #rrggbb (required)")
	catalogMatchCmd.Flags().String("category", "", "Only rank products of this category")
	catalogMatchCmd.Flags().Int("limit", constants.DefaultTopN, "Number of matches to show")
	_ = catalogMatchCmd.MarkFlagRequired("color")
}

// loadProducts reads products of a category from the configured catalog.
func loadProducts(ctx context.Context, category string) ([]catalog.Product, error) {
	var cl cleanups
	defer cl.run()

	source, err := openCatalog(config.Load(), &cl)
	if err != nil {
		return nil, err
	}
	products, err := source.Products(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("loading products: %w", err)
	}
	return products, nil
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	products, err := loadProducts(context.Background(), mustGetString(cmd, "category"))
	if err != nil {
		return err
	}
	if len(products) == 0 {
		fmt.Println("No products found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tBRAND\tNAME\tPRICE\tCOLORS")
	fmt.Fprintln(w, "--\t--------\t-----\t----\t-----\t------")
	for _, p := range products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%s\n", p.ID, p.Category, p.Brand, p.Name, p.Price, strings.Join(p.Colors, " "))
	}
	w.Flush()

	fmt.Printf("\nTotal: %d products\n", len(products))
	return nil
}

func runCatalogMatch(cmd *cobra.Command, args []string) error {
	target, err := palette.ParseHex(mustGetString(cmd, "color"))
	if err != nil {
		return fmt.Errorf("invalid --color: %w", err)
	}
	limit := mustGetInt(cmd, "limit")
	if limit < 1 {
		return fmt.Errorf("--limit must be positive")
	}

	products, err := loadProducts(context.Background(), mustGetString(cmd, "category"))
	if err != nil {
		return err
	}

	matches := catalog.RankWithScores(products, target, "", limit)
	if len(matches) == 0 {
		fmt.Println("No products found")
		return nil
	}

	fmt.Printf("Best matches for %s:\n\n", target.Hex())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSIMILARITY\tCATEGORY\tBRAND\tNAME\tPRICE")
	fmt.Fprintln(w, "-\t----------\t--------\t-----\t----\t-----")
	for i, m := range matches {
		fmt.Fprintf(w, "%d\t%.3f\t%s\t%s\t%s\t%.2f\n", i+1, m.Similarity, m.Product.Category, m.Product.Brand, m.Product.Name, m.Product.Price)
	}
	w.Flush()
	return nil
}

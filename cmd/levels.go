package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/makeup-coach/internal/progress"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Print the experience curve",
	Long:  `Print the experience needed to reach each level and the cost of the next one.`,
	RunE:  runLevels,
}

func init() {
	rootCmd.AddCommand(levelsCmd)

	levelsCmd.Flags().Int("max", 80, "Highest level to print")
}

func runLevels(cmd *cobra.Command, args []string) error {
	maxLevel := mustGetInt(cmd, "max")
	if maxLevel < 1 {
		return fmt.Errorf("--max must be at least 1")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "LEVEL\tTOTAL XP\tTO NEXT\t")
	for level := 1; level <= maxLevel; level++ {
		current, next := progress.LevelBounds(level)
		fmt.Fprintf(w, "%d\t%d\t%d\t\n", level, current, next-current)
	}
	return w.Flush()
}

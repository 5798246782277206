package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "makeup-coach",
	Short: "Analyze makeup on face photos and track practice progress",
	Long: `Makeup Coach samples the colors of facial regions from a photo and its
face-mesh landmarks, recommends matching products from a catalog and keeps
gamified practice progress (levels, skills, streaks, achievements) per user.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

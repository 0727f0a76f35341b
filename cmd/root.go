package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "trip-albums",
	Short: "Turn a geotagged photo library into travel albums",
	Long: `Trip Albums groups a geotagged photo library into trips, clusters each
trip into place visits, identifies the places with CLIP embeddings and a
nearby-search service, and assembles the result into a day-by-day album
structure with highlight groups.`,
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

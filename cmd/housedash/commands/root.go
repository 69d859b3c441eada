package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile  string
	datasetPath string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "housedash",
	Short: "Regional housing price dashboard",
	Long: `housedash - regional housing price dashboard

Loads a wide-format CSV (one row per region, one column per month) and serves
price history, yearly metrics, a global top/bottom leaderboard and a 24-month
forecast per region.

Usage:
  go run ./cmd/housedash [command]

Examples:
  go run ./cmd/housedash serve --dataset housing_data.csv
  go run ./cmd/housedash regions
  go run ./cmd/housedash metrics Austin
  go run ./cmd/housedash forecast Austin
  go run ./cmd/housedash export Austin -o austin.xlsx
  go run ./cmd/housedash check
  go run ./cmd/housedash jobs dataset_quality`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config overlay (env and .env are always read)")
	rootCmd.PersistentFlags().StringVar(&datasetPath, "dataset", "", "dataset CSV path or URL (overrides DATASET_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

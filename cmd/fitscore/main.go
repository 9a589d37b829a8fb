// Package main implements the fitscore CLI: compatibility scoring for candidates, opportunities
// and recruitment leads, plus the HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "fitscore",
	Short: "Compatibility scoring engine",
	Long: `fitscore scores how well a candidate fits an opportunity, qualifies companies as
recruitment leads and calibrates scores against observed outcomes. It runs as a CLI or as a
REST API server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ./fitscore.yaml or ./configs/fitscore.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print a human-readable summary to stderr")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

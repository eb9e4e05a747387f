// Package main provides the entry point for the KiloCode comment service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mlservice",
	Short: "KiloCode comment generation service",
	Long:  "mlservice fetches social-media posts, retrieves relevant brand context from on-disk vector corpora, and generates quality-validated promotional comments via Gemini.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

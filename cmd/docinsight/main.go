// Package main provides the entry point for the docinsight CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is the tool version stamped into every processing record
const version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:   "docinsight",
	Short: "Office document analysis pipeline",
	Long:  "docinsight ingests slide decks and spreadsheets from a directory, analyzes their content with a language model, runs model-generated checks in a sandbox, and stores one timestamped JSON record per file.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

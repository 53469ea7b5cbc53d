package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/daniel/docinsight/internal/config"
	"github.com/daniel/docinsight/internal/llm"
	"github.com/daniel/docinsight/internal/logging"
	"github.com/daniel/docinsight/internal/pipeline"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze every supported document in a directory",
	Long:  "Analyze walks the input directory, processes each recognized document (.pptx, .xlsx, .xlsm) through extraction, model analysis, sandboxed code execution, and writes one timestamped JSON record per file to the output directory.",
	RunE:  runAnalyze,
}

var (
	analyzeConfigFile string
	analyzeInputDir   string
	analyzeOutputDir  string
	analyzeProvider   string
	analyzeModel      string
	analyzeWorkers    int
	analyzeVerbose    bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfigFile, "config", "c", "", "Path to JSON config file")
	analyzeCmd.Flags().StringVarP(&analyzeInputDir, "in", "i", "", "Input directory to scan")
	analyzeCmd.Flags().StringVarP(&analyzeOutputDir, "out", "o", "", "Output directory for result records")
	analyzeCmd.Flags().StringVar(&analyzeProvider, "provider", "", "Model backend: ollama or gemini")
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "Model identifier")
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", 0, "Concurrent files (default from config)")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print detailed per-file output")

	rootCmd.AddCommand(analyzeCmd)
}

// loadMergedConfig builds the effective config: file < env < flags
func loadMergedConfig() (*config.Config, error) {
	cfg := config.Defaults()
	if analyzeConfigFile != "" {
		loaded, err := config.Load(analyzeConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	if analyzeInputDir != "" {
		cfg.InputDir = analyzeInputDir
	}
	if analyzeOutputDir != "" {
		cfg.OutputDir = analyzeOutputDir
	}
	if analyzeProvider != "" {
		cfg.Provider = analyzeProvider
	}
	if analyzeModel != "" {
		cfg.Model = analyzeModel
	}
	if analyzeWorkers > 0 {
		cfg.Workers = analyzeWorkers
	}
	if analyzeVerbose {
		cfg.Verbose = true
	}

	return cfg, cfg.Validate()
}

func runAnalyze(_ *cobra.Command, _ []string) error {
	cfg, err := loadMergedConfig()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel)

	// Directory bootstrapping is an outer-surface concern; the pipeline core
	// only appends to an existing directory.
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := llm.NewClient(ctx, &llm.Config{
		Provider: llm.Provider(cfg.Provider),
		Model:    cfg.Model,
		Endpoint: cfg.OllamaHost,
		APIKey:   cfg.APIKey,
		Timeout:  cfg.ModelTimeout(),
	})
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer func() { _ = client.Close() }()

	summary, err := pipeline.Run(ctx, pipeline.Options{
		InputDir:    cfg.InputDir,
		OutputDir:   cfg.OutputDir,
		Client:      client,
		Workers:     cfg.Workers,
		ExecTimeout: cfg.ExecTimeout(),
		Verbose:     cfg.Verbose,
		DatabaseURL: cfg.DatabaseURL,
		ToolVersion: version,
		Log:         logger,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Done: %d processed, %d failed in %s. Records in %s\n",
		summary.Processed, summary.Failed, summary.Elapsed.Round(1e7), summary.OutputDir)
	for _, failure := range summary.Failures {
		fmt.Printf("  failed: %s (%s)\n", failure.File, failure.Kind)
	}
	return nil
}
